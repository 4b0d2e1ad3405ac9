package handler

import (
	"context"
	"net/http"

	"barriored/internal/middleware"
	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
)

type PostService interface {
	Submit(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.CommunityPost, error)
	Get(ctx context.Context, viewer *moderation.Actor, communityID, id uint64) (*model.CommunityPost, error)
	Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.CommunityPost, error)
	Approve(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.CommunityPost, error)
	Reject(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.CommunityPost, error)
	Pin(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.CommunityPost, error)
	Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error
	ListFeed(ctx context.Context, communityID uint64, typ string, limit int) ([]model.CommunityPost, error)
	ListAdmin(ctx context.Context, actor *moderation.Actor, communityID uint64, status string) ([]model.CommunityPost, error)
	ListMine(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.CommunityPost, error)
}

type PostHandler struct {
	svc PostService
}

func NewPostHandler(svc PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 公告/活动/招聘统一入口，metadata 按 type 校验
func (h *PostHandler) CreatePost(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	p, err := h.svc.Submit(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Approve(c *gin.Context) {
	h.decide(c, h.svc.Approve)
}

func (h *PostHandler) Reject(c *gin.Context) {
	h.decide(c, h.svc.Reject)
}

func (h *PostHandler) decide(c *gin.Context,
	fn func(context.Context, *moderation.Actor, uint64, uint64) (*model.CommunityPost, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := fn(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Pin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	p, err := h.svc.Pin(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePost 作者或管理员，任何状态
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByCommunity 已审核的帖子，置顶优先，?type=&limit=
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	list, err := h.svc.ListFeed(c.Request.Context(), middleware.CommunityID(c), c.Query("type"), queryInt(c, "limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *PostHandler) ListMine(c *gin.Context) {
	list, err := h.svc.ListMine(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *PostHandler) ListAdmin(c *gin.Context) {
	list, err := h.svc.ListAdmin(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
