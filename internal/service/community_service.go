package service

import (
	"context"
	"errors"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"
	"barriored/internal/validation"

	"go.uber.org/zap"
)

type CommunityStore interface {
	Create(ctx context.Context, c *model.Community) error
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
	FindBySlug(ctx context.Context, slug string) (*model.Community, error)
	ListActive(ctx context.Context) ([]model.Community, error)
}

type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id uint64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, id uint64, cols map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

// TenantCache 缓存未命中或故障时回源数据库
type TenantCache interface {
	Get(ctx context.Context, slug string) (*model.Community, error)
	Set(ctx context.Context, c *model.Community) error
}

type CommunityService struct {
	store      CommunityStore
	categories CategoryStore
	cache      TenantCache
	logger     *zap.Logger
}

func NewCommunityService(store CommunityStore, categories CategoryStore, cache TenantCache, logger *zap.Logger) *CommunityService {
	return &CommunityService{store: store, categories: categories, cache: cache, logger: logger}
}

// Resolve 路由里的 :community slug → 租户
func (s *CommunityService) Resolve(ctx context.Context, slug string) (*model.Community, error) {
	if s.cache != nil {
		if c, err := s.cache.Get(ctx, slug); err == nil {
			return c, nil
		}
	}
	c, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr("resolve community", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, c); err != nil {
			s.logger.Warn("tenant cache set failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return c, nil
}

func (s *CommunityService) Get(ctx context.Context, id uint64) (*model.Community, error) {
	c, err := s.store.FindByID(ctx, id)
	return c, storeErr("find community", err)
}

func (s *CommunityService) List(ctx context.Context) ([]model.Community, error) {
	list, err := s.store.ListActive(ctx)
	return list, storeErr("list communities", err)
}

func (s *CommunityService) Create(ctx context.Context, actor *moderation.Actor, raw []byte) (*model.Community, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	in, err := validation.DecodeCommunity(raw)
	if err != nil {
		return nil, err
	}
	c := in.Model()
	if c.Slug == "" {
		c.Slug = pkg.Slugify(c.Name)
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, storeErr("create community", err)
	}
	return c, nil
}

func (s *CommunityService) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := s.categories.List(ctx)
	return list, storeErr("list categories", err)
}

func (s *CommunityService) CreateCategory(ctx context.Context, actor *moderation.Actor, raw []byte) (*model.Category, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	in, err := validation.DecodeCategory(raw)
	if err != nil {
		return nil, err
	}
	cat := &model.Category{
		Name:      in.Name,
		Slug:      in.Slug,
		Icon:      in.Icon,
		ParentID:  in.ParentID,
		SortOrder: in.SortOrder,
	}
	if cat.Slug == "" {
		cat.Slug = pkg.Slugify(cat.Name)
	}
	if err := s.checkParent(ctx, 0, cat.ParentID); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, storeErr("create category", err)
	}
	return cat, nil
}

func (s *CommunityService) UpdateCategory(ctx context.Context, actor *moderation.Actor, id uint64, raw []byte) (*model.Category, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return nil, storeErr("find category", err)
	}
	in, err := validation.DecodeCategory(raw)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, id, in.ParentID); err != nil {
		return nil, err
	}
	slug := in.Slug
	if slug == "" {
		slug = pkg.Slugify(in.Name)
	}
	cols := map[string]any{
		"name":       in.Name,
		"slug":       slug,
		"icon":       in.Icon,
		"parent_id":  in.ParentID,
		"sort_order": in.SortOrder,
	}
	if err := s.categories.Update(ctx, id, cols); err != nil {
		return nil, storeErr("update category", err)
	}
	cat, err := s.categories.FindByID(ctx, id)
	return cat, storeErr("find category", err)
}

func (s *CommunityService) DeleteCategory(ctx context.Context, actor *moderation.Actor, id uint64) error {
	if err := moderation.RequireAdmin(actor); err != nil {
		return err
	}
	return storeErr("delete category", s.categories.Delete(ctx, id))
}

// checkParent 父分类必须存在且不能是自己
func (s *CommunityService) checkParent(ctx context.Context, self uint64, parentID *uint64) error {
	if parentID == nil {
		return nil
	}
	if self != 0 && *parentID == self {
		return fieldError("parent_id", "Una categoria no puede ser su propio padre")
	}
	if _, err := s.categories.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, moderation.ErrNotFound) {
			return fieldError("parent_id", "Categoria padre no encontrada")
		}
		return storeErr("find category", err)
	}
	return nil
}
