package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
)

// FilesystemStore keeps blobs under a local directory. Used for development
// and single-node deployments.
type FilesystemStore struct {
	root    string
	baseURL string
}

func NewFilesystemStore(root, publicBaseURL string) (*FilesystemStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("blob: filesystem root must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}

	baseURL := strings.TrimRight(publicBaseURL, "/")
	if baseURL == "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("blob: resolve root: %w", err)
		}
		baseURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}

	return &FilesystemStore{root: root, baseURL: baseURL}, nil
}

func (s *FilesystemStore) EnsureContainer(context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("blob: create root: %w", err)
	}
	return nil
}

func (s *FilesystemStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blob: create dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("blob: commit %q: %w", key, err)
	}

	return s.baseURL + "/" + url.PathEscape(key), nil
}

func (s *FilesystemStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("blob: read %q: %w", key, err)
	}
	return data, nil
}

func (s *FilesystemStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", entity.ErrBlobNotFound, key)
		}
		return fmt.Errorf("blob: delete %q: %w", key, err)
	}
	return nil
}

func (s *FilesystemStore) Ping(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("blob: stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob: root %q is not a directory", s.root)
	}
	return nil
}

// path maps a key into root, rejecting keys that would escape it.
func (s *FilesystemStore) path(key string) (string, error) {
	if key == "" || !filepath.IsLocal(key) {
		return "", fmt.Errorf("%w: invalid blob key %q", entity.ErrInvalidInput, key)
	}
	return filepath.Join(s.root, key), nil
}
