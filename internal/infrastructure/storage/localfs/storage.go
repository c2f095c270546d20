// Package localfs keeps uploaded contract documents on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/contracts"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// resolve rejects keys that would escape the base directory.
func (s *Storage) resolve(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve storage key",
			fmt.Errorf("invalid key %q", key))
	}
	return filepath.Join(s.basePath, cleaned), nil
}

func (s *Storage) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, data)
	if err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}
	return written, nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrContractNotFound, "open stored file", err)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}
