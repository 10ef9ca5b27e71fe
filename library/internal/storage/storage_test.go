package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Astemirdum/library-catalog/pkg/breaker"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "covers/1/a.png", "image/png", strings.NewReader("png"), 3)
	require.NoError(t, err)
	require.Equal(t, "/uploads/covers/1/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "covers", "1", "a.png"))
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
}

func TestCoverKey(t *testing.T) {
	key := CoverKey(42, "Front.JPG")
	require.True(t, strings.HasPrefix(key, "covers/42/"))
	require.True(t, strings.HasSuffix(key, ".jpg"))
	require.NotEqual(t, key, CoverKey(42, "Front.JPG"))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
	calls int
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	putter := &fakePutter{}
	store := &S3Store{
		client:  putter,
		bucket:  "covers",
		baseURL: publicBaseURL(S3Config{Bucket: "covers", Endpoint: "http://minio:9000/"}),
		breaker: newUploadBreaker(),
	}

	url, err := store.Save(context.Background(), "covers/7/x.png", "image/png", strings.NewReader("data"), 4)
	require.NoError(t, err)
	require.Equal(t, "http://minio:9000/covers/covers/7/x.png", url)
	require.Equal(t, "covers", *putter.input.Bucket)
	require.Equal(t, "image/png", *putter.input.ContentType)
	require.Equal(t, "data", putter.body)
}

func TestS3Store_SaveBreaker(t *testing.T) {
	putter := &fakePutter{err: errors.New("connection refused")}
	store := &S3Store{client: putter, bucket: "covers", baseURL: "http://minio", breaker: newUploadBreaker()}

	for i := 0; i < 5; i++ {
		_, err := store.Save(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
		require.Error(t, err)
		require.NotErrorIs(t, err, breaker.ErrOpen)
	}
	_, err := store.Save(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	require.ErrorIs(t, err, breaker.ErrOpen)
	require.Equal(t, 5, putter.calls)
}

func TestPublicBaseURL(t *testing.T) {
	require.Equal(t, "https://cdn.example.com",
		publicBaseURL(S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}))
	require.Equal(t, "https://b.s3.eu-west-1.amazonaws.com",
		publicBaseURL(S3Config{Bucket: "b", Region: "eu-west-1"}))
}
