package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// Backend is a filesystem implementation of the songsync.ObjectStore
// interface. Objects live at <BaseDir>/<bucket>/<key>.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory holding one directory per bucket
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	info, err := os.Stat(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base directory %s is not a directory", config.BaseDir)
	}

	return &Backend{baseDir: filepath.Clean(config.BaseDir)}, nil
}

func (b *Backend) objectPath(bucket, key string) (string, error) {
	p := filepath.Join(b.baseDir, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("object %s/%s escapes base directory", bucket, key)
	}
	return p, nil
}

// Fetch copies the file into w
func (b *Backend) Fetch(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p, err := b.objectPath(bucket, key)
	if err != nil {
		return 0, err
	}

	file, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return 0, songsync.ErrObjectNotFound
	} else if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(io.NewOffsetWriter(w, 0), file)
	if err != nil {
		return n, fmt.Errorf("failed to read file: %w", err)
	}
	return n, nil
}
