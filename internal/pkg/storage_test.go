package pkg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUpload(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	stored, err := st.Upload(context.Background(), "7/abc.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "7/abc.png", stored)
	assert.Equal(t, "http://localhost:8080/uploads/7/abc.png", st.PublicURL(stored))

	data, err := os.ReadFile(filepath.Join(dir, "7", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStorageStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStorage(dir, "http://x")
	require.NoError(t, err)

	stored, err := st.Upload(context.Background(), "../../etc/evil.png", strings.NewReader("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "etc/evil.png", stored)
	_, err = os.Stat(filepath.Join(dir, "etc", "evil.png"))
	assert.NoError(t, err)
}

func TestS3PublicURL(t *testing.T) {
	s := &S3Storage{cfg: S3Config{Bucket: "imgs", Region: "us-east-1"}}
	assert.Equal(t, "https://imgs.s3.us-east-1.amazonaws.com/1/a.jpg", s.PublicURL("1/a.jpg"))

	s.cfg.PublicBaseURL = "https://cdn.barriored.co/"
	assert.Equal(t, "https://cdn.barriored.co/1/a.jpg", s.PublicURL("1/a.jpg"))
}
