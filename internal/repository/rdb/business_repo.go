package rdb

import (
	"context"
	"strings"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"gorm.io/gorm"
)

type BusinessRepository struct {
	DB *gorm.DB
}

type BusinessFilter struct {
	CategoryID uint64
	Query      string
	Limit      int
	Offset     int
}

func businessRef(b *model.Business) moderatedRef {
	return moderatedRef{kind: moderation.KindBusiness, id: b.ID, communityID: b.CommunityID, ownerID: b.OwnerID, title: b.Name}
}

// Create 新建商家（pending），promoteTo 非空时同事务提升提交者角色
func (r *BusinessRepository) Create(ctx context.Context, b *model.Business, promoteTo moderation.Role) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return translate(err)
		}
		if promoteTo != "" {
			if err := tx.Model(&model.User{}).Where("id = ?", b.OwnerID).
				Update("role", promoteTo).Error; err != nil {
				return err
			}
		}
		return insertOutbox(tx, model.EventSubmitted, businessRef(b), b.OwnerID)
	})
}

func (r *BusinessRepository) FindByID(ctx context.Context, communityID, id uint64) (*model.Business, error) {
	var b model.Business
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BusinessRepository) FindBySlug(ctx context.Context, communityID uint64, slug string) (*model.Business, error) {
	var b model.Business
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND slug = ?", communityID, slug).
		First(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// SlugExists 软删除的行仍占用唯一索引，所以用 Unscoped
func (r *BusinessRepository) SlugExists(ctx context.Context, communityID uint64, slug string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Unscoped().Model(&model.Business{}).
		Where("community_id = ? AND slug = ?", communityID, slug).
		Count(&n).Error
	return n > 0, err
}

// ListApproved 公开目录：已审核且启用，最新的在前
func (r *BusinessRepository) ListApproved(ctx context.Context, communityID uint64, f BusinessFilter) ([]model.Business, error) {
	q := r.DB.WithContext(ctx).
		Where("community_id = ? AND status = ? AND is_active = ?", communityID, moderation.StatusApproved, true)
	if f.CategoryID > 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", like, like)
	}
	var list []model.Business
	err := q.Order("created_at DESC, id DESC").
		Offset(max(f.Offset, 0)).
		Limit(clampLimit(f.Limit, 20, 100)).
		Find(&list).Error
	return list, err
}

// ListMap 地图标注点
func (r *BusinessRepository) ListMap(ctx context.Context, communityID uint64) ([]model.BusinessPin, error) {
	var pins []model.BusinessPin
	err := r.DB.WithContext(ctx).Model(&model.Business{}).
		Select("id", "name", "slug", "category_id", "latitude", "longitude").
		Where("community_id = ? AND status = ? AND is_active = ?", communityID, moderation.StatusApproved, true).
		Order("id ASC").
		Find(&pins).Error
	return pins, err
}

// ListByCommunity 管理后台，status 为空表示全部
func (r *BusinessRepository) ListByCommunity(ctx context.Context, communityID uint64, status moderation.Status) ([]model.Business, error) {
	q := r.DB.WithContext(ctx).Where("community_id = ?", communityID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.Business
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *BusinessRepository) ListByOwner(ctx context.Context, communityID, ownerID uint64) ([]model.Business, error) {
	var list []model.Business
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND owner_id = ?", communityID, ownerID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// Update 只改内容列，不触碰 status
func (r *BusinessRepository) Update(ctx context.Context, b *model.Business, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	delete(cols, "status")
	res := r.DB.WithContext(ctx).Model(&model.Business{}).
		Where("community_id = ? AND id = ?", b.CommunityID, b.ID).
		Updates(cols)
	return translate(res.Error)
}

// SetStatus pending → approved/rejected
func (r *BusinessRepository) SetStatus(ctx context.Context, b *model.Business, to moderation.Status, actorID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transition(tx, &model.Business{}, businessRef(b), moderation.StatusPending, to, actorID)
	})
}

func (r *BusinessRepository) Delete(ctx context.Context, b *model.Business, actorID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return remove(tx, &model.Business{}, businessRef(b), actorID)
	})
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike 用户输入中的 % 和 _ 按字面匹配，'!' 在 mysql 和 postgres 下都无需再转义
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
