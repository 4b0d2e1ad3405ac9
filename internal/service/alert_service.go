package service

import (
	"context"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/validation"
)

type AlertStore interface {
	Create(ctx context.Context, a *model.Alert) error
	FindByID(ctx context.Context, communityID, id uint64) (*model.Alert, error)
	ListActive(ctx context.Context, communityID uint64, now time.Time) ([]model.Alert, error)
	ListAll(ctx context.Context, communityID uint64) ([]model.Alert, error)
	Update(ctx context.Context, communityID, id uint64, cols map[string]any) error
	Delete(ctx context.Context, communityID, id uint64) error
}

// AlertService 社区预警只由管理员维护，不走审核
type AlertService struct {
	store AlertStore
	now   func() time.Time
}

func NewAlertService(store AlertStore) *AlertService {
	return &AlertService{store: store, now: time.Now}
}

func (s *AlertService) Create(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.Alert, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	in, err := validation.DecodeAlert(raw)
	if err != nil {
		return nil, err
	}
	a := in.Model()
	a.CommunityID = communityID
	a.AuthorID = actor.ID
	if err := s.store.Create(ctx, a); err != nil {
		return nil, storeErr("create alert", err)
	}
	return a, nil
}

func (s *AlertService) Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.Alert, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	a, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find alert", err)
	}
	patch, err := validation.DecodeAlertPatch(raw)
	if err != nil {
		return nil, err
	}
	// 只改一端时和已有的另一端比较
	starts, ends := a.StartsAt, a.EndsAt
	if patch.StartsAt != nil {
		starts = patch.StartsAt
	}
	if patch.EndsAt != nil {
		ends = patch.EndsAt
	}
	if starts != nil && ends != nil && !ends.After(*starts) {
		return nil, fieldError("ends_at", "Debe ser posterior a la fecha de inicio")
	}
	if err := s.store.Update(ctx, communityID, id, patch.Columns()); err != nil {
		return nil, storeErr("update alert", err)
	}
	updated, err := s.store.FindByID(ctx, communityID, id)
	return updated, storeErr("find alert", err)
}

func (s *AlertService) Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error {
	if err := moderation.RequireAdmin(actor); err != nil {
		return err
	}
	return storeErr("delete alert", s.store.Delete(ctx, communityID, id))
}

// ListActive 公开接口，已过期但还没被定时任务停用的也会被过滤
func (s *AlertService) ListActive(ctx context.Context, communityID uint64) ([]model.Alert, error) {
	list, err := s.store.ListActive(ctx, communityID, s.now())
	return list, storeErr("list alerts", err)
}

func (s *AlertService) ListAll(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.Alert, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	list, err := s.store.ListAll(ctx, communityID)
	return list, storeErr("list alerts", err)
}

type PublicServiceStore interface {
	Create(ctx context.Context, svc *model.PublicService) error
	FindByID(ctx context.Context, communityID, id uint64) (*model.PublicService, error)
	ListActive(ctx context.Context, communityID uint64, category string) ([]model.PublicService, error)
	ListAll(ctx context.Context, communityID uint64) ([]model.PublicService, error)
	Update(ctx context.Context, communityID, id uint64, cols map[string]any) error
	Delete(ctx context.Context, communityID, id uint64) error
}

type PublicServiceService struct {
	store PublicServiceStore
}

func NewPublicServiceService(store PublicServiceStore) *PublicServiceService {
	return &PublicServiceService{store: store}
}

func (s *PublicServiceService) Create(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.PublicService, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	in, err := validation.DecodePublicService(raw)
	if err != nil {
		return nil, err
	}
	svc := in.Model()
	svc.CommunityID = communityID
	if err := s.store.Create(ctx, svc); err != nil {
		return nil, storeErr("create public service", err)
	}
	return svc, nil
}

func (s *PublicServiceService) Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.PublicService, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, communityID, id); err != nil {
		return nil, storeErr("find public service", err)
	}
	patch, err := validation.DecodePublicServicePatch(raw)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, communityID, id, patch.Columns()); err != nil {
		return nil, storeErr("update public service", err)
	}
	updated, err := s.store.FindByID(ctx, communityID, id)
	return updated, storeErr("find public service", err)
}

func (s *PublicServiceService) Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error {
	if err := moderation.RequireAdmin(actor); err != nil {
		return err
	}
	return storeErr("delete public service", s.store.Delete(ctx, communityID, id))
}

var serviceCategories = map[string]bool{
	"emergency": true, "health": true, "government": true, "transport": true, "utilities": true,
}

func (s *PublicServiceService) ListActive(ctx context.Context, communityID uint64, category string) ([]model.PublicService, error) {
	if category != "" && !serviceCategories[category] {
		return nil, fieldError("category", "Debe ser uno de: emergency health government transport utilities")
	}
	list, err := s.store.ListActive(ctx, communityID, category)
	return list, storeErr("list public services", err)
}

func (s *PublicServiceService) ListAll(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.PublicService, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	list, err := s.store.ListAll(ctx, communityID)
	return list, storeErr("list public services", err)
}
