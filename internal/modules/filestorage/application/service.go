package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/soundrift/soundrift/internal/modules/filestorage/domain"
)

// FileService validates uploads and hands them to the blob store. Validation
// runs strictly before the store is touched, so a rejected file never leaves
// partial state anywhere.
type FileService struct {
	storage domain.FileStorage
}

func NewFileService(storage domain.FileStorage) *FileService {
	return &FileService{storage: storage}
}

// UploadAudio validates an audio file and uploads it, returning the public URL.
func (s *FileService) UploadAudio(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error) {
	if err := domain.ValidateAudio(filename, size); err != nil {
		return "", err
	}

	key := storageKey(folder, filename)
	url, err := s.storage.UploadFile(ctx, key, file, contentTypeFor(filename))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return url, nil
}

// UploadImage validates an image, normalizes it to a 500x500 JPEG and uploads
// it, returning the public URL.
func (s *FileService) UploadImage(ctx context.Context, file io.Reader, filename string, size int64, folder string) (string, error) {
	if err := domain.ValidateImage(filename, size); err != nil {
		return "", err
	}

	src, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBadFileType, err)
	}
	dst := imaging.Fit(src, 500, 500, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, dst, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := storageKey(folder, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))+".jpg")
	url, err := s.storage.UploadFile(ctx, key, buf, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return url, nil
}

// Delete removes a previously uploaded file by its public URL.
func (s *FileService) Delete(ctx context.Context, fileURL string) error {
	key, err := s.storage.GetKeyFromURL(fileURL)
	if err != nil {
		return err
	}
	return s.storage.DeleteFile(ctx, key)
}

func storageKey(folder, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".aac":
		return "audio/aac"
	}
	return "application/octet-stream"
}
