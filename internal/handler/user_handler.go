package handler

import (
	"context"
	"net/http"

	"barriored/internal/middleware"
	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	Signup(ctx context.Context, raw []byte) (*model.User, *pkg.Pair, error)
	Login(ctx context.Context, raw []byte) (*pkg.Pair, error)
	Refresh(ctx context.Context, raw []byte) (*pkg.Pair, error)
	Logout(ctx context.Context, actor *moderation.Actor) error
	Me(ctx context.Context, actor *moderation.Actor) (*model.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Signup 邮箱注册，注册即登录
func (h *UserHandler) Signup(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	user, pair, err := h.svc.Signup(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	pair, err := h.svc.Login(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Refresh 旧的 refresh token 换一对新的
func (h *UserHandler) Refresh(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.ActorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
