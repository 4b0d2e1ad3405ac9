package handler

import (
	"context"
	"net/http"

	"barriored/internal/middleware"
	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/service"

	"github.com/gin-gonic/gin"
)

type BusinessService interface {
	Submit(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.Business, error)
	Get(ctx context.Context, viewer *moderation.Actor, communityID, id uint64) (*model.Business, error)
	GetBySlug(ctx context.Context, viewer *moderation.Actor, communityID uint64, slug string) (*model.Business, error)
	Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.Business, error)
	Approve(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.Business, error)
	Reject(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.Business, error)
	Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error
	ListDirectory(ctx context.Context, communityID uint64, q service.DirectoryQuery) ([]model.Business, error)
	ListMap(ctx context.Context, communityID uint64) ([]model.BusinessPin, error)
	ListAdmin(ctx context.Context, actor *moderation.Actor, communityID uint64, status string) ([]model.Business, error)
	ListMine(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.Business, error)
}

type BusinessHandler struct {
	svc BusinessService
}

func NewBusinessHandler(svc BusinessService) *BusinessHandler {
	return &BusinessHandler{svc: svc}
}

// Submit 提交后为 pending，等待管理员审核
func (h *BusinessHandler) Submit(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	b, err := h.svc.Submit(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BusinessHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) GetBySlug(c *gin.Context) {
	b, err := h.svc.GetBySlug(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	b, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) Approve(c *gin.Context) {
	h.decide(c, h.svc.Approve)
}

func (h *BusinessHandler) Reject(c *gin.Context) {
	h.decide(c, h.svc.Reject)
}

func (h *BusinessHandler) decide(c *gin.Context,
	fn func(context.Context, *moderation.Actor, uint64, uint64) (*model.Business, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) Delete(c *gin.Context) {
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

// List 公开目录，?category=<slug>&q=&limit=&offset=
func (h *BusinessHandler) List(c *gin.Context) {
	list, err := h.svc.ListDirectory(c.Request.Context(), middleware.CommunityID(c), service.DirectoryQuery{
		CategorySlug: c.Query("category"),
		Query:        c.Query("q"),
		Limit:        queryInt(c, "limit"),
		Offset:       queryInt(c, "offset"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *BusinessHandler) Map(c *gin.Context) {
	pins, err := h.svc.ListMap(c.Request.Context(), middleware.CommunityID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": pins})
}

func (h *BusinessHandler) ListMine(c *gin.Context) {
	list, err := h.svc.ListMine(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *BusinessHandler) ListAdmin(c *gin.Context) {
	list, err := h.svc.ListAdmin(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
