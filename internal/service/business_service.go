package service

import (
	"context"
	"errors"
	"fmt"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"
	"barriored/internal/repository/rdb"
	"barriored/internal/validation"
)

type BusinessStore interface {
	Create(ctx context.Context, b *model.Business, promoteTo moderation.Role) error
	FindByID(ctx context.Context, communityID, id uint64) (*model.Business, error)
	FindBySlug(ctx context.Context, communityID uint64, slug string) (*model.Business, error)
	SlugExists(ctx context.Context, communityID uint64, slug string) (bool, error)
	ListApproved(ctx context.Context, communityID uint64, f rdb.BusinessFilter) ([]model.Business, error)
	ListMap(ctx context.Context, communityID uint64) ([]model.BusinessPin, error)
	ListByCommunity(ctx context.Context, communityID uint64, status moderation.Status) ([]model.Business, error)
	ListByOwner(ctx context.Context, communityID, ownerID uint64) ([]model.Business, error)
	Update(ctx context.Context, b *model.Business, cols map[string]any) error
	SetStatus(ctx context.Context, b *model.Business, to moderation.Status, actorID uint64) error
	Delete(ctx context.Context, b *model.Business, actorID uint64) error
}

type CategoryFinder interface {
	FindByID(ctx context.Context, id uint64) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
}

type BusinessService struct {
	store      BusinessStore
	categories CategoryFinder
}

func NewBusinessService(store BusinessStore, categories CategoryFinder) *BusinessService {
	return &BusinessService{store: store, categories: categories}
}

// Submit 新商家总是 pending，邻居提交后升级为商户
func (s *BusinessService) Submit(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.Business, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return nil, err
	}
	in, err := validation.DecodeBusiness(raw)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	b := in.Model()
	b.CommunityID = communityID
	b.OwnerID = actor.ID
	b.Status = moderation.StatusPending
	b.IsActive = true

	slug, err := s.uniqueSlug(ctx, communityID, pkg.Slugify(b.Name))
	if err != nil {
		return nil, err
	}
	b.Slug = slug

	var promoteTo moderation.Role
	if role, ok := moderation.PromotedRole(actor.Role); ok {
		promoteTo = role
	}
	if err := s.store.Create(ctx, b, promoteTo); err != nil {
		return nil, storeErr("create business", err)
	}
	pkg.ModerationDecisions.WithLabelValues(string(moderation.KindBusiness), model.EventSubmitted).Inc()
	return b, nil
}

// checkCategory 表上没有外键，分类是否存在在这里检查
func (s *BusinessService) checkCategory(ctx context.Context, id uint64) error {
	_, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, moderation.ErrNotFound) {
		return fieldError("category_id", "Categoria no encontrada")
	}
	return storeErr("find category", err)
}

func (s *BusinessService) uniqueSlug(ctx context.Context, communityID uint64, base string) (string, error) {
	if base == "" {
		base = "negocio"
	}
	candidate := base
	for i := 2; i <= 50; i++ {
		exists, err := s.store.SlugExists(ctx, communityID, candidate)
		if err != nil {
			return "", storeErr("check slug", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	suffix, err := pkg.RandToken(3)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

// Get 看不到的记录一律按不存在处理
func (s *BusinessService) Get(ctx context.Context, viewer *moderation.Actor, communityID, id uint64) (*model.Business, error) {
	b, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find business", err)
	}
	if !moderation.IsVisible(b, viewer) {
		return nil, moderation.ErrNotFound
	}
	return b, nil
}

func (s *BusinessService) GetBySlug(ctx context.Context, viewer *moderation.Actor, communityID uint64, slug string) (*model.Business, error) {
	b, err := s.store.FindBySlug(ctx, communityID, slug)
	if err != nil {
		return nil, storeErr("find business", err)
	}
	if !moderation.IsVisible(b, viewer) {
		return nil, moderation.ErrNotFound
	}
	return b, nil
}

// Update 只有所有者能改，slug 和状态保持不变
func (s *BusinessService) Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.Business, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return nil, err
	}
	b, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find business", err)
	}
	if err := moderation.CanEdit(actor, b); err != nil {
		return nil, err
	}
	patch, err := validation.DecodeBusinessPatch(raw)
	if err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.store.Update(ctx, b, patch.Columns()); err != nil {
		return nil, storeErr("update business", err)
	}
	updated, err := s.store.FindByID(ctx, communityID, id)
	return updated, storeErr("find business", err)
}

func (s *BusinessService) Approve(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.Business, error) {
	return s.decide(ctx, actor, communityID, id, moderation.Approve)
}

func (s *BusinessService) Reject(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.Business, error) {
	return s.decide(ctx, actor, communityID, id, moderation.Reject)
}

func (s *BusinessService) decide(ctx context.Context, actor *moderation.Actor, communityID, id uint64,
	rule func(*moderation.Actor, moderation.Record) (moderation.Status, error)) (*model.Business, error) {
	if err := moderation.CanModerate(actor); err != nil {
		return nil, err
	}
	b, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find business", err)
	}
	to, err := rule(actor, b)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetStatus(ctx, b, to, actor.ID); err != nil {
		return nil, storeErr("set business status", err)
	}
	b.Status = to
	pkg.ModerationDecisions.WithLabelValues(string(moderation.KindBusiness), string(to)).Inc()
	return b, nil
}

// Delete 所有者或管理员，任何状态都可以
func (s *BusinessService) Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error {
	if err := moderation.CanSubmit(actor); err != nil {
		return err
	}
	b, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return storeErr("find business", err)
	}
	if err := moderation.CanDelete(actor, b); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, b, actor.ID); err != nil {
		return storeErr("delete business", err)
	}
	pkg.ModerationDecisions.WithLabelValues(string(moderation.KindBusiness), model.EventDeleted).Inc()
	return nil
}

type DirectoryQuery struct {
	CategorySlug string
	Query        string
	Limit        int
	Offset       int
}

// ListDirectory 未知分类返回空列表
func (s *BusinessService) ListDirectory(ctx context.Context, communityID uint64, q DirectoryQuery) ([]model.Business, error) {
	f := rdb.BusinessFilter{Query: q.Query, Limit: q.Limit, Offset: q.Offset}
	if q.CategorySlug != "" {
		cat, err := s.categories.FindBySlug(ctx, q.CategorySlug)
		if errors.Is(err, moderation.ErrNotFound) {
			return []model.Business{}, nil
		}
		if err != nil {
			return nil, storeErr("find category", err)
		}
		f.CategoryID = cat.ID
	}
	list, err := s.store.ListApproved(ctx, communityID, f)
	return list, storeErr("list businesses", err)
}

func (s *BusinessService) ListMap(ctx context.Context, communityID uint64) ([]model.BusinessPin, error) {
	pins, err := s.store.ListMap(ctx, communityID)
	return pins, storeErr("list map", err)
}

func (s *BusinessService) ListAdmin(ctx context.Context, actor *moderation.Actor, communityID uint64, status string) ([]model.Business, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByCommunity(ctx, communityID, st)
	return list, storeErr("list businesses", err)
}

func (s *BusinessService) ListMine(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.Business, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return nil, err
	}
	list, err := s.store.ListByOwner(ctx, communityID, actor.ID)
	return list, storeErr("list businesses", err)
}

func parseStatusFilter(raw string) (moderation.Status, error) {
	if raw == "" {
		return "", nil
	}
	st := moderation.Status(raw)
	if !st.Valid() {
		return "", fieldError("status", "Debe ser uno de: pending approved rejected")
	}
	return st, nil
}
