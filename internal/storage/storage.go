// Package storage abstracts where rendered clips live. The pipeline only
// depends on the Backend contract; local disk is the default and Supabase
// object storage is available behind the same interface.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Backend is the upload/exists/delete/url contract consumed by the pipeline
// and the caption handlers.
type Backend interface {
	// Upload copies a local file under remoteKey and returns its public URL.
	Upload(localPath, remoteKey string) (string, error)
	Exists(remoteKey string) bool
	Delete(remoteKey string) bool
	PublicURL(remoteKey string) string
}

// LocalBackend stores files under a base directory and serves them from the
// /clips static route.
type LocalBackend struct {
	baseDir string
}

func NewLocalBackend(baseDir string) (*LocalBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalBackend{baseDir: baseDir}, nil
}

// BaseDir returns the directory files are stored under, so the HTTP server
// can mount it as a static route.
func (b *LocalBackend) BaseDir() string { return b.baseDir }

func (b *LocalBackend) Upload(localPath, remoteKey string) (string, error) {
	dest := filepath.Join(b.baseDir, filepath.FromSlash(remoteKey))
	if sameFile(localPath, dest) {
		// The pipeline already writes under baseDir; copying a file onto
		// itself would truncate it.
		return b.PublicURL(remoteKey), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := copyFile(localPath, dest); err != nil {
		return "", fmt.Errorf("store %s: %w", remoteKey, err)
	}
	return b.PublicURL(remoteKey), nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func (b *LocalBackend) Exists(remoteKey string) bool {
	_, err := os.Stat(filepath.Join(b.baseDir, filepath.FromSlash(remoteKey)))
	return err == nil
}

func (b *LocalBackend) Delete(remoteKey string) bool {
	err := os.Remove(filepath.Join(b.baseDir, filepath.FromSlash(remoteKey)))
	return err == nil
}

func (b *LocalBackend) PublicURL(remoteKey string) string {
	return "/clips/" + strings.TrimPrefix(filepath.ToSlash(remoteKey), "/")
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var _ Backend = (*LocalBackend)(nil)
