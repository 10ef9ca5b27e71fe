package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	Dir        string `envconfig:"UPLOAD_DIR" default:"uploads"`
	PublicPath string `envconfig:"UPLOAD_PUBLIC_PATH" default:"/uploads"`
	MaxSize    int64  `envconfig:"UPLOAD_MAX_SIZE" default:"5242880"`
	S3         S3Config
}

type S3Config struct {
	Bucket       string `envconfig:"S3_BUCKET"`
	Endpoint     string `envconfig:"S3_ENDPOINT"`
	Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	AccessKey    string `envconfig:"S3_ACCESS_KEY" json:"-"`
	SecretKey    string `envconfig:"S3_SECRET_KEY" json:"-"`
	PublicURL    string `envconfig:"S3_PUBLIC_URL"`
	UsePathStyle bool   `envconfig:"S3_PATH_STYLE" default:"true"`
}

// CoverStore persists an uploaded object and returns the URL it is served from.
type CoverStore interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// New picks object storage when a bucket is configured and the local disk otherwise.
func New(ctx context.Context, cfg Config) (CoverStore, error) {
	if cfg.S3.Bucket != "" {
		return NewS3Store(ctx, cfg.S3)
	}
	return NewDiskStore(cfg.Dir, cfg.PublicPath)
}

// CoverKey builds a unique object key for a book cover, keeping the original extension.
func CoverKey(bookID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("covers", fmt.Sprint(bookID), uuid.NewString()+ext)
}
