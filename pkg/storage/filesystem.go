package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Bucket persists files on disk under a base directory. It mirrors the
// object-store surface the pipeline needs: read, write, delete, last
// write wins.
type Bucket struct {
	baseDir string
}

// NewBucket ensures the base directory exists and returns a handle.
func NewBucket(baseDir string) (*Bucket, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("bucket directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket directory: %w", err)
	}
	return &Bucket{baseDir: baseDir}, nil
}

// Save writes the given bytes to the provided relative path under the base dir.
func (b *Bucket) Save(name string, data []byte) error {
	path := b.resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare bucket directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// SaveStream copies from reader into the target file path.
func (b *Bucket) SaveStream(name string, r io.Reader) error {
	path := b.resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare bucket directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write object stream: %w", err)
	}
	return nil
}

// Read returns the full contents of a stored object.
func (b *Bucket) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(b.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Open returns a read-only handle for the stored file.
func (b *Bucket) Open(name string) (*os.File, error) {
	file, err := os.Open(b.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (b *Bucket) Delete(name string) error {
	if err := os.Remove(b.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (b *Bucket) Path(name string) string {
	return b.resolve(name)
}

func (b *Bucket) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(b.baseDir, name)
}
