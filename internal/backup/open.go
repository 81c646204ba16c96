package backup

import (
	"context"

	"github.com/diewo77/go-quotes/internal/config"
)

// Open returns the store and format selected by cfg: an S3 bucket when one
// is configured, the local directory otherwise.
func Open(ctx context.Context, cfg config.BackupConfig) (Store, Format, error) {
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, "", err
	}
	if cfg.UseS3() {
		store, err := NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		return store, format, err
	}
	store, err := NewLocalStore(cfg.Dir)
	return store, format, err
}
