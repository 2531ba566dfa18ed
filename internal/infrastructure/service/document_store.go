package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/document"
)

// FilesystemStore implements document.Store on the local filesystem.
// Artifacts live at {baseDir}/{ownerID}/{kind}; the reference is the
// path relative to baseDir.
type FilesystemStore struct {
	baseDir string
}

// NewFilesystemStore creates a store rooted at baseDir, creating it if needed.
func NewFilesystemStore(baseDir string) (*FilesystemStore, error) {
	if baseDir == "" {
		return nil, errors.New("document store: base directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("document store: create base dir: %w", err)
	}
	return &FilesystemStore{baseDir: baseDir}, nil
}

// Ref returns the relative path an artifact is stored under.
func (s *FilesystemStore) Ref(ownerID string, kind document.ArtifactKind) document.ArtifactRef {
	return document.ArtifactRef(filepath.Join(ownerID, kind.String()+".txt"))
}

// Put stores artifact bytes for the owner and kind. With getOrCreate set an
// existing artifact is left untouched and its reference returned, so repeated
// issuance never duplicates or overwrites an admit card.
func (s *FilesystemStore) Put(ctx context.Context, ownerID string, kind document.ArtifactKind, data []byte, getOrCreate bool) (document.ArtifactRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ownerID == "" || !kind.IsValid() {
		return "", fmt.Errorf("%w: invalid owner or kind", document.ErrStoreFailed)
	}

	rel := s.Ref(ownerID, kind).String()
	path := filepath.Join(s.baseDir, rel)

	if getOrCreate {
		if _, err := os.Stat(path); err == nil {
			return document.ArtifactRef(rel), nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", document.ErrStoreFailed, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", document.ErrStoreFailed, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", document.ErrStoreFailed, err)
	}

	return document.ArtifactRef(rel), nil
}

// Get returns the stored artifact bytes.
func (s *FilesystemStore) Get(ctx context.Context, ref document.ArtifactRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := ref.String()
	if rel == "" || strings.Contains(rel, "..") {
		return nil, fmt.Errorf("%w: invalid reference", document.ErrStoreFailed)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrStoreFailed, err)
	}
	return data, nil
}

var _ document.Store = (*FilesystemStore)(nil)
