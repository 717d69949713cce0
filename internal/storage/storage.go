package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Driver stores uploaded files and resolves their public URLs.
type Driver interface {
	Upload(ctx context.Context, body io.Reader, key, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Config struct {
	Driver             string
	UploadsPath        string
	AWSRegion          string
	AWSBucket          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

func New(ctx context.Context, cfg Config) (Driver, error) {
	switch cfg.Driver {
	case "local", "":
		uploadsPath := cfg.UploadsPath
		if uploadsPath == "" {
			uploadsPath = "storage/uploads"
		}
		return NewLocal(uploadsPath), nil
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// CleanKey rejects keys that would escape the storage root.
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}
