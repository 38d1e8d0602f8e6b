// Package storage lưu file case study (local disk, Supabase Storage hoặc MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vnkhanh/bizsim-server/config"
)

// ErrNotExist trả về khi key không tồn tại hoặc nằm ngoài vùng lưu trữ.
var ErrNotExist = errors.New("object does not exist")

// Backend: key luôn là đường dẫn tương đối dạng "case-files/<name>".
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// FromConfig chọn backend theo STORAGE_BACKEND.
func FromConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (Backend, error) {
	switch cfg.StorageBackend {
	case "", "local":
		log.Info("using local file storage", "dir", cfg.UploadDir)
		return NewLocal(cfg.UploadDir)
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, errors.New("SUPABASE_URL and SUPABASE_KEY are required for supabase storage")
		}
		log.Info("using supabase storage", "bucket", cfg.SupabaseBucket)
		return NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	case "minio":
		log.Info("using minio storage", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
		return NewMinio(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			Region:    cfg.MinioRegion,
		})
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
