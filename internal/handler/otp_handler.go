package handler

import (
	"context"
	"net/http"

	"barriored/internal/pkg"

	"github.com/gin-gonic/gin"
)

type OTPService interface {
	Send(ctx context.Context, raw []byte) (string, error)
	Verify(ctx context.Context, raw []byte) (*pkg.Pair, error)
}

// OTPHandler WhatsApp 验证码登录
type OTPHandler struct {
	svc OTPService
}

func NewOTPHandler(svc OTPService) *OTPHandler {
	return &OTPHandler{svc: svc}
}

func (h *OTPHandler) Send(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	requestID, err := h.svc.Send(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": requestID})
}

// Verify 校验通过后直接返回会话
func (h *OTPHandler) Verify(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	pair, err := h.svc.Verify(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
