package domain

import "time"

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusActive   UserStatus = "active"
	StatusDisabled UserStatus = "disabled"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ImageMeta describes an uploaded attachment, captured once at upload time.
type ImageMeta struct {
	ContentType string `json:"contentType,omitempty"`
	SizeBytes   int64  `json:"sizeBytes,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// BlobRef points at a stored object: the opaque storage key plus the
// resolved public URL derived from it.
type BlobRef struct {
	Path string    `json:"path"`
	URL  string    `json:"url"`
	Meta ImageMeta `json:"meta"`
}

// Record is a persisted note with an optional image attachment.
// ImagePath and ImageURL are set together from one upload or both left
// empty. Records are created and deleted, never updated in place.
type Record struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId,omitempty"`
	Text      string     `json:"text"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	ImagePath string     `json:"imagePath,omitempty"`
	ImageMeta *ImageMeta `json:"imageMeta,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// HasImage reports whether the record owns a blob in object storage.
func (r Record) HasImage() bool {
	return r.ImagePath != ""
}
