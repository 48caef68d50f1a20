package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegBytes = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")
)

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantExt  string
		wantErr  error
	}{
		{"png", "cat.png", pngBytes, ".png", nil},
		{"jpeg with wrong extension", "dog.png", jpegBytes, ".jpg", nil},
		{"heic by extension", "IMG_0001.HEIC", []byte{0x00, 0x00, 0x00, 0x18, 0x66, 0x74, 0x79, 0x70, 0x00}, ".heic", nil},
		{"html", "x.jpg", []byte("<html><script>alert(1)</script></html>"), "", ErrUnsupportedImage},
		{"svg", "x.svg", []byte(`<?xml version="1.0"?><svg></svg>`), "", ErrUnsupportedImage},
		{"empty", "x.png", nil, "", ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ext, err := DetectImage(tt.filename, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestNewKey(t *testing.T) {
	owner := uuid.New()

	a := NewKey(PrefixReports, owner, "jpg")
	b := NewKey(PrefixReports, owner, ".jpg")

	assert.True(t, strings.HasPrefix(a, "reports/"+owner.String()+"/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
}

func TestLocalStorePutDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "http://localhost:8080/media/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "claims/u1/proof.png", pngBytes, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/claims/u1/proof.png", url)

	got, err := os.ReadFile(filepath.Join(root, "claims", "u1", "proof.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)

	require.NoError(t, store.Delete(context.Background(), "claims/u1/proof.png"))
	_, err = os.Stat(filepath.Join(root, "claims", "u1", "proof.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing object is not an error.
	assert.NoError(t, store.Delete(context.Background(), "claims/u1/proof.png"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../outside.png", pngBytes, "image/png")
	assert.Error(t, err)
}

type fakeS3 struct {
	puts    map[string][]byte
	deleted []string
	failPut bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("bucket unreachable")
	}
	body, _ := io.ReadAll(in.Body)
	f.puts[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePutDelete(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}}
	store := newS3Store(fake, "paws", "https://cdn.example.com/paws")

	url, err := store.Put(context.Background(), "reports/a/b.jpg", jpegBytes, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/paws/reports/a/b.jpg", url)
	assert.Equal(t, jpegBytes, fake.puts["reports/a/b.jpg"])

	require.NoError(t, store.Delete(context.Background(), "reports/a/b.jpg"))
	assert.Equal(t, []string{"reports/a/b.jpg"}, fake.deleted)
}

func TestS3StorePutFailure(t *testing.T) {
	store := newS3Store(&fakeS3{failPut: true}, "paws", "https://cdn.example.com")

	_, err := store.Put(context.Background(), "k", jpegBytes, "image/jpeg")
	assert.Error(t, err)
}

func TestDefaultPublicBase(t *testing.T) {
	assert.Equal(t, "https://paws.s3.eu-west-1.amazonaws.com", defaultPublicBase(S3Config{Bucket: "paws", Region: "eu-west-1"}))
	assert.Equal(t, "https://minio.local/paws", defaultPublicBase(S3Config{Bucket: "paws", Endpoint: "https://minio.local/"}))
}
