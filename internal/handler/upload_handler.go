package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"barriored/internal/middleware"
	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
)

type UploadService interface {
	Upload(ctx context.Context, actor *moderation.Actor, size int64, r io.Reader) (string, error)
	MaxSize() int64
}

type UploadHandler struct {
	svc UploadService
}

func NewUploadHandler(svc UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload multipart 字段 file，返回公开地址
func (h *UploadHandler) Upload(c *gin.Context) {
	// 多留 1MB 给 multipart 头部
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.MaxSize()+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		msg := "Este campo es obligatorio"
		if errors.As(err, &tooLarge) {
			msg = "El archivo es demasiado grande"
		}
		writeError(c, fileError(msg))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, fileError("No se pudo leer el archivo"))
		return
	}
	defer f.Close()

	url, err := h.svc.Upload(c.Request.Context(), middleware.ActorFrom(c), fh.Size, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func fileError(msg string) error {
	verr := moderation.NewValidationError()
	verr.Add("file", msg)
	return verr
}
