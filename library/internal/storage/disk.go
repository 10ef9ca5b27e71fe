package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DiskStore writes objects below dir and serves them under publicPath.
type DiskStore struct {
	dir        string
	publicPath string
}

func NewDiskStore(dir, publicPath string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &DiskStore{dir: dir, publicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) PublicPath() string { return s.publicPath }

func (s *DiskStore) Save(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "create cover dir")
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "create cover file")
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", errors.Wrap(err, "write cover file")
	}
	return path.Join(s.publicPath, key), nil
}
