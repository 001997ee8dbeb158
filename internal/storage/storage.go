// Package storage persists uploaded images under keys of the form
// <type>/<name>. The disk backend is the default; MinIO is used when
// configured.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/car-showroom/internal/config"
)

const (
	MaxFileSize = 5 << 20
	MaxFiles    = 10

	DefaultType = "cars"
)

// Types lists the upload partitions.
var Types = []string{"cars", "brands", "banners", "rentals"}

var (
	ErrNotFound     = errors.New("object not found")
	ErrInvalidKey   = errors.New("invalid object key")
	ErrNotImage     = errors.New("Only image files are allowed!")
	ErrFileTooBig   = fmt.Errorf("File too large. Maximum size is %dMB", MaxFileSize>>20)
	ErrTooManyFiles = fmt.Errorf("Too many files. Maximum is %d", MaxFiles)
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New returns the backend selected by cfg.Backend.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "", "disk":
		return NewDiskStorage(cfg.UploadDir), nil
	case "minio":
		return NewMinioClient(cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NormalizeType maps an empty or unknown upload type to DefaultType.
func NormalizeType(uploadType string) string {
	uploadType = strings.ToLower(strings.TrimSpace(uploadType))
	for _, t := range Types {
		if t == uploadType {
			return t
		}
	}
	return DefaultType
}

// imageExtensions maps the image types served back with an image
// Content-Type to their extensions. The first extension is canonical.
var imageExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"image/avif": {".avif"},
	"image/bmp":  {".bmp"},
}

// NewFilename builds a unique name like "car-1700000000000-<uuid>.jpg". The
// extension follows contentType; the original name only picks between the
// spellings of that type. Other image types get ".bin" so they are never
// served as markup.
func NewFilename(uploadType, originalName, contentType string, now time.Time) string {
	prefix := strings.TrimSuffix(NormalizeType(uploadType), "s")
	return fmt.Sprintf("%s-%d-%s%s", prefix, now.UnixMilli(), uuid.NewString(), extensionFor(originalName, contentType))
}

func extensionFor(originalName, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	exts, ok := imageExtensions[mediaType]
	if !ok {
		return ".bin"
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	for _, e := range exts {
		if e == ext {
			return ext
		}
	}
	return exts[0]
}

// Key joins an upload type and file name into an object key. The name must
// be a single path element.
func Key(uploadType, filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return "", ErrInvalidKey
	}
	return path.Join(NormalizeType(uploadType), filename), nil
}

// URL is the public path an object is served from.
func URL(key string) string {
	return "/uploads/" + key
}

// IsImage reports whether contentType names an image MIME type.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
