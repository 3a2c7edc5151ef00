package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage tujuan penyimpanan file hasil upload.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, publicURL string) error
}

/* =======================================================================
   Local filesystem (disajikan lewat app.Static("/uploads", dir))
======================================================================= */

type LocalStorage struct {
	Dir     string
	BaseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir kosong")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("buat upload dir: %w", err)
	}
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	path, err := s.pathOf(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return s.BaseURL + "/" + key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, publicURL string) error {
	key := strings.TrimPrefix(strings.TrimPrefix(publicURL, s.BaseURL), "/")
	path, err := s.pathOf(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// pathOf menolak key yang keluar dari Dir ("../").
func (s *LocalStorage) pathOf(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("key tidak valid: %q", key)
	}
	return filepath.Join(s.Dir, clean), nil
}
