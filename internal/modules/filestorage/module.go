package filestorage

import (
	"context"
	"fmt"

	"github.com/soundrift/soundrift/internal/modules/filestorage/application"
	"github.com/soundrift/soundrift/internal/modules/filestorage/domain"
	"github.com/soundrift/soundrift/internal/modules/filestorage/infrastructure/local"
	"github.com/soundrift/soundrift/internal/modules/filestorage/infrastructure/s3"
	"github.com/soundrift/soundrift/internal/shared/infrastructure/config"
)

type Module struct {
	Service *application.FileService
	Storage domain.FileStorage
}

// NewModule picks the blob store backend from config: S3 (or any
// S3-compatible endpoint) when enabled, local disk otherwise.
func NewModule(ctx context.Context, cfg config.FileStorageConfig) (*Module, error) {
	var storage domain.FileStorage
	var err error

	if cfg.UseS3 {
		storage, err = s3.NewS3Storage(ctx, s3.S3Config{
			BucketName: cfg.S3BucketName,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			UseSSL:     cfg.S3UseSSL,
		})
	} else {
		storage, err = local.NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	return &Module{
		Service: application.NewFileService(storage),
		Storage: storage,
	}, nil
}
