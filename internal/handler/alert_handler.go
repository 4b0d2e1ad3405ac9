package handler

import (
	"context"
	"net/http"

	"barriored/internal/middleware"
	"barriored/internal/model"
	"barriored/internal/moderation"

	"github.com/gin-gonic/gin"
)

type AlertService interface {
	Create(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.Alert, error)
	Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.Alert, error)
	Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error
	ListActive(ctx context.Context, communityID uint64) ([]model.Alert, error)
	ListAll(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.Alert, error)
}

type PublicServiceService interface {
	Create(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.PublicService, error)
	Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.PublicService, error)
	Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error
	ListActive(ctx context.Context, communityID uint64, category string) ([]model.PublicService, error)
	ListAll(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.PublicService, error)
}

// AlertHandler 预警和公共服务，都是管理员维护的社区信息
type AlertHandler struct {
	alerts   AlertService
	services PublicServiceService
}

func NewAlertHandler(alerts AlertService, services PublicServiceService) *AlertHandler {
	return &AlertHandler{alerts: alerts, services: services}
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	list, err := h.alerts.ListActive(c.Request.Context(), middleware.CommunityID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *AlertHandler) ListAllAlerts(c *gin.Context) {
	list, err := h.alerts.ListAll(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	a, err := h.alerts.Create(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AlertHandler) UpdateAlert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	a, err := h.alerts.Update(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.alerts.Delete(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListServices ?category= 按分类过滤
func (h *AlertHandler) ListServices(c *gin.Context) {
	list, err := h.services.ListActive(c.Request.Context(), middleware.CommunityID(c), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *AlertHandler) ListAllServices(c *gin.Context) {
	list, err := h.services.ListAll(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *AlertHandler) CreateService(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	svc, err := h.services.Create(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *AlertHandler) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	svc, err := h.services.Update(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id, raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *AlertHandler) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Delete(c.Request.Context(), middleware.ActorFrom(c), middleware.CommunityID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
