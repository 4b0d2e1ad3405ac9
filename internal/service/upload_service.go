package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"barriored/internal/moderation"
	"barriored/internal/pkg"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxUploadSize int64 = 5 << 20

// 按内容嗅探，不信任文件名和 Content-Type
var allowedImages = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type UploadService struct {
	storage pkg.ObjectStorage
	maxSize int64
}

func NewUploadService(storage pkg.ObjectStorage, maxSize int64) *UploadService {
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}
	return &UploadService{storage: storage, maxSize: maxSize}
}

func (s *UploadService) MaxSize() int64 { return s.maxSize }

// Upload 返回公开地址，路径为 <userID>/<uuid>.<ext>
func (s *UploadService) Upload(ctx context.Context, actor *moderation.Actor, size int64, r io.Reader) (string, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return "", err
	}
	if size > s.maxSize {
		return "", s.tooLarge()
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", s.tooLarge()
	}
	if len(data) == 0 {
		return "", fieldError("file", "Este campo es obligatorio")
	}
	mime := mimetype.Detect(data)
	ext, ok := allowedImages[mime.String()]
	if !ok {
		return "", fieldError("file", "Formato no permitido, usa JPEG, PNG o WebP")
	}
	path := fmt.Sprintf("%d/%s.%s", actor.ID, uuid.NewString(), ext)
	stored, err := s.storage.Upload(ctx, path, bytes.NewReader(data), mime.String())
	if err != nil {
		return "", moderation.Upstream("upload image", err)
	}
	return s.storage.PublicURL(stored), nil
}

func (s *UploadService) tooLarge() error {
	return fieldError("file", fmt.Sprintf("El archivo supera el limite de %dMB", s.maxSize>>20))
}
