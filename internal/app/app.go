package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"path"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"formkeeper/internal/util"
	"formkeeper/pkg/domain"
	"formkeeper/pkg/storage"
	"formkeeper/pkg/store"
)

const (
	objectPrefix  = "images"
	presignExpiry = 15 * time.Minute
)

// Config holds runtime configuration for the record service.
type Config struct {
	Store          store.Store
	Objects        storage.ObjectStore
	MaxUploadBytes int64
}

// App is the server-side record service. It keeps the row store a thin
// gateway: inserts validate and assign ownership, deletes check
// ownership and remove the row only. Blob lifecycle is driven by the
// caller through the upload/delete object operations.
type App struct {
	store          store.Store
	objects        storage.ObjectStore
	maxUploadBytes int64
}

// New constructs the record service.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Objects == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}
	return &App{
		store:          cfg.Store,
		objects:        cfg.Objects,
		maxUploadBytes: cfg.MaxUploadBytes,
	}, nil
}

// MaxUploadBytes reports the configured upload cap.
func (a *App) MaxUploadBytes() int64 {
	return a.maxUploadBytes
}

// UploadImage stores attachment bytes and returns the blob reference.
// The suggested name is advisory; the returned path is the source of
// truth. Image dimensions are captured once here so later consumers do
// not need to refetch the blob.
func (a *App) UploadImage(ctx context.Context, data []byte, suggestedName string) (domain.BlobRef, error) {
	if len(data) == 0 {
		return domain.BlobRef{}, ErrEmptyUpload
	}
	if int64(len(data)) > a.maxUploadBytes {
		return domain.BlobRef{}, ErrUploadTooLarge
	}
	meta := domain.ImageMeta{
		ContentType: http.DetectContentType(data),
		SizeBytes:   int64(len(data)),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}
	key := buildObjectKey(suggestedName)
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), meta.ContentType); err != nil {
		return domain.BlobRef{}, fmt.Errorf("save object: %w", err)
	}
	return domain.BlobRef{
		Path: key,
		URL:  a.objects.PublicURL(key),
		Meta: meta,
	}, nil
}

// DeleteObject removes a blob. Absence of the blob is not an error.
func (a *App) DeleteObject(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return a.objects.Delete(ctx, key)
}

// ObjectURL returns a pre-signed URL for a stored blob.
func (a *App) ObjectURL(ctx context.Context, key string) (string, error) {
	return a.objects.PresignGet(ctx, key, presignExpiry)
}

// InsertRecord validates and stores a new record owned by the caller.
// The store assigns the id.
func (a *App) InsertRecord(owner domain.User, rec domain.Record) (domain.Record, error) {
	if strings.TrimSpace(rec.Text) == "" {
		return domain.Record{}, ErrTextRequired
	}
	if (rec.ImageURL == "") != (rec.ImagePath == "") {
		return domain.Record{}, ErrImagePairMismatch
	}
	rec.OwnerID = owner.ID
	stored, err := a.store.InsertRecord(rec)
	if err != nil {
		return domain.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return stored, nil
}

// ListRecords returns the caller's records, newest first.
func (a *App) ListRecords(owner domain.User) ([]domain.Record, error) {
	return a.store.ListRecordsByOwner(owner.ID)
}

// GetRecord retrieves one record, enforcing ownership.
func (a *App) GetRecord(owner domain.User, id string) (domain.Record, error) {
	rec, ok, err := a.store.GetRecord(id)
	if err != nil {
		return domain.Record{}, fmt.Errorf("fetch record: %w", err)
	}
	if !ok {
		return domain.Record{}, ErrRecordNotFound
	}
	if rec.OwnerID != owner.ID {
		return domain.Record{}, ErrForbidden
	}
	return rec, nil
}

// DeleteRecord removes the record row. The caller is responsible for
// deleting the attached blob first; the row store stays a pass-through
// gateway with no blob knowledge.
func (a *App) DeleteRecord(owner domain.User, id string) error {
	rec, ok, err := a.store.GetRecord(id)
	if err != nil {
		return fmt.Errorf("fetch record: %w", err)
	}
	if !ok {
		return ErrRecordNotFound
	}
	if rec.OwnerID != owner.ID {
		return ErrForbidden
	}
	if err := a.store.DeleteRecord(id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func buildObjectKey(suggestedName string) string {
	name := sanitizeFilename(path.Base(suggestedName))
	if name == "" {
		name = "imagen.png"
	}
	return path.Join(objectPrefix, util.NewID()+"-"+name)
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
