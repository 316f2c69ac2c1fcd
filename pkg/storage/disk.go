// Package storage stores uploaded files on local disk or S3-compatible
// object storage (AWS S3, MinIO, R2).
//
//	disk, err := storage.FromConfig(ctx)
//	err = disk.Put(ctx, "restaurants/ab12.jpg", body, "image/jpeg")
//	url := disk.URL("restaurants/ab12.jpg")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/elitetable/elitetable/config"
)

// ErrInvalidPath is returned for empty or escaping object paths.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is a file store.
type Disk interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	URL(path string) string
	Driver() string
}

// FromConfig builds the disk named by STORAGE_DISK ("local" or "s3").
func FromConfig(ctx context.Context) (Disk, error) {
	switch d := config.StorageDefault(); d {
	case "local", "":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", d)
	}
}

// clean normalises p to a relative slash path that cannot climb out of the
// disk root.
func clean(p string) (string, error) {
	c := path.Clean("/" + strings.TrimSpace(p))
	c = strings.TrimPrefix(c, "/")
	if c == "" || c == "." {
		return "", ErrInvalidPath
	}
	return c, nil
}
