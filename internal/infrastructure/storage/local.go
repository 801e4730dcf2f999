// Package storage provides artifact storage implementations for
// rendered invoice documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

// Ensure LocalArtifactStorage implements invoice.ArtifactStorage
var _ invoice.ArtifactStorage = (*LocalArtifactStorage)(nil)

// LocalArtifactStorage keeps artifacts on the local filesystem. It is
// meant for development; the disk is not durable across redeploys, so
// a Get for a wiped file reports shared.ErrNotFound and the caller
// regenerates the document from the stored invoice data.
type LocalArtifactStorage struct {
	dir    string
	logger *zap.Logger
}

// NewLocalArtifactStorage creates the backing directory if needed.
func NewLocalArtifactStorage(dir string, logger *zap.Logger) (*LocalArtifactStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalArtifactStorage{dir: dir, logger: logger}, nil
}

// Put stores the artifact and returns its stable reference
func (s *LocalArtifactStorage) Put(ctx context.Context, filename string, data []byte) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing artifact %s: %w", filename, err)
	}

	s.logger.Debug("Artifact stored",
		zap.String("filename", filename),
		zap.Int("bytes", len(data)))
	return filename, nil
}

// Get retrieves previously stored artifact bytes by reference
func (s *LocalArtifactStorage) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := validateFilename(ref); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("reading artifact %s: %w", ref, err)
	}
	return data, nil
}

// validateFilename rejects path traversal in caller supplied names.
func validateFilename(name string) error {
	if name == "" {
		return errors.New("artifact filename is required")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid artifact filename %q", name)
	}
	return nil
}
