package pkg

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ObjectStorage 上传对象并给出公开地址
type ObjectStorage interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
	PublicURL(path string) string
}

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // 兼容 R2/MinIO，为空时使用 AWS
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type S3Storage struct {
	uploader *s3manager.Uploader
	cfg      S3Config
}

func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &S3Storage{uploader: s3manager.NewUploader(sess), cfg: cfg}, nil
}

func (s *S3Storage) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return path, nil
}

func (s *S3Storage) PublicURL(path string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + path
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, path)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, path)
}

// LocalStorage 开发环境写本地目录，由 gin 静态目录对外提供
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalStorage) Dir() string { return l.dir }

func (l *LocalStorage) Upload(ctx context.Context, path string, body io.Reader, _ string) (string, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(l.dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return strings.TrimPrefix(filepath.ToSlash(clean), "/"), nil
}

func (l *LocalStorage) PublicURL(path string) string {
	return l.baseURL + "/" + path
}
