package handler

import (
	"context"
	"net/http"

	"barriored/internal/middleware"
	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
)

type CommunityService interface {
	List(ctx context.Context) ([]model.Community, error)
	Create(ctx context.Context, actor *moderation.Actor, raw []byte) (*model.Community, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, actor *moderation.Actor, raw []byte) (*model.Category, error)
	UpdateCategory(ctx context.Context, actor *moderation.Actor, id uint64, raw []byte) (*model.Category, error)
	DeleteCategory(ctx context.Context, actor *moderation.Actor, id uint64) error
}

type CommunityHandler struct {
	svc CommunityService
}

func NewCommunityHandler(svc CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Create 只有管理员能开通新社区
func (h *CommunityHandler) Create(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	community, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, community)
}

// Detail 租户中间件已经解析好
func (h *CommunityHandler) Detail(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CommunityFrom(c))
}

func (h *CommunityHandler) ListCategories(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) CreateCategory(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), middleware.ActorFrom(c), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CommunityHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), middleware.ActorFrom(c), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CommunityHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
