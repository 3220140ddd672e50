package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
)

// Store archives raw uploads and returns a URI for the stored object.
type Store interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New builds the Store selected by cfg.Backend. "none" returns (nil, nil).
func New(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		s, err := NewLocalStore(cfg.Dir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			KeyPrefix: cfg.KeyPrefix,
			PathStyle: cfg.PathStyle,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "none":
		return nil, nil
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown storage backend %q", cfg.Backend), common.ErrInvalidInput)
	}
}

// ObjectKey names an archived upload: yyyy/mm/dd/<job id>.<ext>.
func ObjectKey(jobID uuid.UUID, ext string, now time.Time) string {
	ext = constants.NormalizeExt(ext)
	name := jobID.String()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(now.UTC().Format("2006/01/02"), name)
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("%w: empty object key", common.ErrInvalidInput)
	}
	return k, nil
}
