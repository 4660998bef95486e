package domain

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds the size limit")
	ErrBadFileType  = errors.New("file type is not allowed")
	ErrUploadFailed = errors.New("file upload failed")
)

// Size ceilings and extension allow-lists are part of the validation
// contract; the limits are checked before any byte reaches the store.
const (
	MaxAudioSize = 50 << 20 // 50 MB
	MaxImageSize = 10 << 20 // 10 MB
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".aac":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ValidateAudio checks an audio upload against the allow-list and size limit.
func ValidateAudio(filename string, size int64) error {
	return validate(filename, size, audioExtensions, MaxAudioSize)
}

// ValidateImage checks an image upload against the allow-list and size limit.
func ValidateImage(filename string, size int64) error {
	return validate(filename, size, imageExtensions, MaxImageSize)
}

func validate(filename string, size int64, allowed map[string]bool, maxSize int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if size > maxSize {
		return ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed[ext] {
		return ErrBadFileType
	}
	return nil
}

// FileStorage is the blob store boundary. Implemented by S3 and by a local
// filesystem store for development.
type FileStorage interface {
	// UploadFile uploads a file with the given key and returns the public URL
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)

	// DeleteFile deletes a file by its key
	DeleteFile(ctx context.Context, key string) error

	// GetKeyFromURL extracts the storage key from a public URL
	GetKeyFromURL(url string) (string, error)
}
