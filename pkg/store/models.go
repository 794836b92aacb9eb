package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"formkeeper/pkg/domain"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Status       string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type RecordModel struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"index"`
	Text      string `gorm:"type:text;not null"`
	ImageURL  string
	ImagePath string
	ImageMeta datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Status:       domain.UserStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func recordToModel(r domain.Record) RecordModel {
	model := RecordModel{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Text:      r.Text,
		ImageURL:  r.ImageURL,
		ImagePath: r.ImagePath,
		CreatedAt: r.CreatedAt,
	}
	if r.ImageMeta != nil {
		if data, err := json.Marshal(r.ImageMeta); err == nil {
			model.ImageMeta = datatypes.JSON(data)
		}
	}
	return model
}

func recordFromModel(m RecordModel) domain.Record {
	rec := domain.Record{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Text:      m.Text,
		ImageURL:  m.ImageURL,
		ImagePath: m.ImagePath,
		CreatedAt: m.CreatedAt,
	}
	if len(m.ImageMeta) > 0 {
		var meta domain.ImageMeta
		if err := json.Unmarshal(m.ImageMeta, &meta); err == nil {
			rec.ImageMeta = &meta
		}
	}
	return rec
}
