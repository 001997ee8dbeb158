package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// DiskStorage keeps objects as files below a root directory.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	if root == "" {
		root = "uploads"
	}
	return &DiskStorage{root: root}
}

// Root returns the directory objects are written to.
func (d *DiskStorage) Root() string {
	return d.root
}

func (d *DiskStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if !filepath.IsLocal(clean) {
		return "", ErrInvalidKey
	}
	return filepath.Join(d.root, clean), nil
}

// EnsureBucket creates the root and one directory per upload type.
func (d *DiskStorage) EnsureBucket(_ context.Context) error {
	for _, t := range Types {
		if err := os.MkdirAll(filepath.Join(d.root, t), 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
	}
	return nil
}

// Put writes r to a temp file and renames it into place so readers never see
// a partial object.
func (d *DiskStorage) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	target, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (d *DiskStorage) Open(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, ObjectInfo{}, translate(err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}
	return f, fileInfo(key, st), nil
}

func (d *DiskStorage) Stat(_ context.Context, key string) (ObjectInfo, error) {
	p, err := d.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, translate(err)
	}
	if st.IsDir() {
		return ObjectInfo{}, ErrNotFound
	}
	return fileInfo(key, st), nil
}

func (d *DiskStorage) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	return translate(os.Remove(p))
}

func (d *DiskStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := d.Stat(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func fileInfo(key string, st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:         key,
		Size:        st.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
		ModTime:     st.ModTime(),
	}
}

func translate(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

var _ ObjectStorage = (*DiskStorage)(nil)
