package rdb

import (
	"context"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var c model.Community
	if err := r.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// FindBySlug 租户解析，停用的社区视为不存在
func (r *CommunityRepository) FindBySlug(ctx context.Context, slug string) (*model.Community, error) {
	var c model.Community
	if err := r.DB.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CommunityRepository) ListActive(ctx context.Context) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&list).Error
	return list, err
}

type CategoryRepository struct {
	DB *gorm.DB
}

func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint64) (*model.Category, error) {
	var c model.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	err := r.DB.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&list).Error
	return list, err
}

func (r *CategoryRepository) Update(ctx context.Context, id uint64, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Updates(cols).Error)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return moderation.ErrNotFound
	}
	return nil
}
