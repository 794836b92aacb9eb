package app

import "errors"

var (
	ErrTextRequired      = errors.New("text is required")
	ErrImagePairMismatch = errors.New("imageUrl and imagePath must be set together")
	ErrRecordNotFound    = errors.New("record not found")
	ErrForbidden         = errors.New("forbidden")
	ErrEmptyUpload       = errors.New("upload body is empty")
	ErrUploadTooLarge    = errors.New("upload exceeds size limit")
)
