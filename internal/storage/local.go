package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores files under a directory that is served statically at publicURL.
type Local struct {
	root      string
	publicURL string
}

func NewLocal(root, publicURL string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{root: abs, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (l *Local) Root() string { return l.root }

func (l *Local) Save(ctx context.Context, p string, r io.Reader, _ string) error {
	abs, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(abs)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return dst.Close()
}

func (l *Local) Delete(_ context.Context, p string) error {
	abs, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *Local) URL(p string) string {
	return l.publicURL + "/" + strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (l *Local) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if clean == "/" {
		return "", ErrInvalidPath
	}
	abs := filepath.Join(l.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(abs, l.root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return abs, nil
}
