package storage

import (
	"context"
	"fmt"

	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/port"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/config"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/minio"
	"github.com/JHorcasitas/cdmx-pothole-detection/internal/infra/s3"
)

// New returns the object-store gateway selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (port.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		return minio.NewStorage(minio.StorageConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
		})
	case "s3":
		return s3.NewStorage(ctx)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
