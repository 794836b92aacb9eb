package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"formkeeper/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &RecordModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser inserts or replaces a user row.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Save(&model).Error
}

// HasUserEmail checks for an existing email.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail retrieves a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID retrieves a user by id.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// InsertRecord stores a new record and returns it with its assigned id.
// Any id supplied by the caller is ignored.
func (s *GormStore) InsertRecord(r domain.Record) (domain.Record, error) {
	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	model := recordToModel(r)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Record{}, err
	}
	return recordFromModel(model), nil
}

// ListRecords returns all records, newest first.
func (s *GormStore) ListRecords() ([]domain.Record, error) {
	return s.listRecords("created_at DESC")
}

// ListRecordsByOwner returns records filtered by owner, newest first.
func (s *GormStore) ListRecordsByOwner(ownerID string) ([]domain.Record, error) {
	return s.listRecords("created_at DESC", "owner_id = ?", ownerID)
}

func (s *GormStore) listRecords(order string, conds ...any) ([]domain.Record, error) {
	var models []RecordModel
	tx := s.db.Order(order)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Record, 0, len(models))
	for _, m := range models {
		res = append(res, recordFromModel(m))
	}
	return res, nil
}

// GetRecord retrieves a record.
func (s *GormStore) GetRecord(id string) (domain.Record, bool, error) {
	var model RecordModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Record{}, false, nil
		}
		return domain.Record{}, false, err
	}
	return recordFromModel(model), true, nil
}

// DeleteRecord removes a record row. Deleting an absent id is not an error.
func (s *GormStore) DeleteRecord(id string) error {
	return s.db.Delete(&RecordModel{}, "id = ?", id).Error
}
