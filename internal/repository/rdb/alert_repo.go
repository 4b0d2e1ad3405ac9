package rdb

import (
	"context"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"gorm.io/gorm"
)

// 严重程度优先，同级按时间倒序
const alertOrder = "CASE severity WHEN 'critical' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END, created_at DESC"

type AlertRepository struct {
	DB *gorm.DB
}

func (r *AlertRepository) Create(ctx context.Context, a *model.Alert) error {
	return translate(r.DB.WithContext(ctx).Create(a).Error)
}

func (r *AlertRepository) FindByID(ctx context.Context, communityID, id uint64) (*model.Alert, error) {
	var a model.Alert
	if err := r.DB.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// ListActive 启用且未过期
func (r *AlertRepository) ListActive(ctx context.Context, communityID uint64, now time.Time) ([]model.Alert, error) {
	var list []model.Alert
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND is_active = ?", communityID, true).
		Where("(ends_at IS NULL OR ends_at > ?)", now).
		Order(alertOrder).
		Find(&list).Error
	return list, err
}

func (r *AlertRepository) ListAll(ctx context.Context, communityID uint64) ([]model.Alert, error) {
	var list []model.Alert
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *AlertRepository) Update(ctx context.Context, communityID, id uint64, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Model(&model.Alert{}).
		Where("community_id = ? AND id = ?", communityID, id).
		Updates(cols).Error)
}

func (r *AlertRepository) Delete(ctx context.Context, communityID, id uint64) error {
	res := r.DB.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		Delete(&model.Alert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return moderation.ErrNotFound
	}
	return nil
}

// ExpireEnded 停用已过结束时间的预警，返回影响行数
func (r *AlertRepository) ExpireEnded(ctx context.Context, communityID uint64, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Alert{}).
		Where("community_id = ? AND is_active = ? AND ends_at IS NOT NULL AND ends_at <= ?", communityID, true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

type PublicServiceRepository struct {
	DB *gorm.DB
}

func (r *PublicServiceRepository) Create(ctx context.Context, s *model.PublicService) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error)
}

func (r *PublicServiceRepository) FindByID(ctx context.Context, communityID, id uint64) (*model.PublicService, error) {
	var s model.PublicService
	if err := r.DB.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// ListActive category 为空表示全部
func (r *PublicServiceRepository) ListActive(ctx context.Context, communityID uint64, category string) ([]model.PublicService, error) {
	q := r.DB.WithContext(ctx).Where("community_id = ? AND is_active = ?", communityID, true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var list []model.PublicService
	err := q.Order("category ASC, sort_order ASC").Find(&list).Error
	return list, err
}

func (r *PublicServiceRepository) ListAll(ctx context.Context, communityID uint64) ([]model.PublicService, error) {
	var list []model.PublicService
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("category ASC, sort_order ASC").
		Find(&list).Error
	return list, err
}

func (r *PublicServiceRepository) Update(ctx context.Context, communityID, id uint64, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Model(&model.PublicService{}).
		Where("community_id = ? AND id = ?", communityID, id).
		Updates(cols).Error)
}

func (r *PublicServiceRepository) Delete(ctx context.Context, communityID, id uint64) error {
	res := r.DB.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		Delete(&model.PublicService{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return moderation.ErrNotFound
	}
	return nil
}
