package rdb

import (
	"context"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func postRef(p *model.CommunityPost) moderatedRef {
	return moderatedRef{kind: moderation.KindPost, id: p.ID, communityID: p.CommunityID, ownerID: p.AuthorID, title: p.Title}
}

func (r *PostRepository) Create(ctx context.Context, p *model.CommunityPost) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return translate(err)
		}
		return insertOutbox(tx, model.EventSubmitted, postRef(p), p.AuthorID)
	})
}

func (r *PostRepository) FindByID(ctx context.Context, communityID, id uint64) (*model.CommunityPost, error) {
	var p model.CommunityPost
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ListApproved 公开动态：置顶优先，再按时间倒序
func (r *PostRepository) ListApproved(ctx context.Context, communityID uint64, typ model.PostType, limit int) ([]model.CommunityPost, error) {
	q := r.DB.WithContext(ctx).
		Where("community_id = ? AND status = ?", communityID, moderation.StatusApproved)
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	var list []model.CommunityPost
	err := q.Order("is_pinned DESC, created_at DESC, id DESC").
		Limit(clampLimit(limit, 20, 100)).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) ListByCommunity(ctx context.Context, communityID uint64, status moderation.Status) ([]model.CommunityPost, error) {
	q := r.DB.WithContext(ctx).Where("community_id = ?", communityID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.CommunityPost
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *PostRepository) ListByAuthor(ctx context.Context, communityID, authorID uint64) ([]model.CommunityPost, error) {
	var list []model.CommunityPost
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND author_id = ?", communityID, authorID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *PostRepository) Update(ctx context.Context, p *model.CommunityPost, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	delete(cols, "status")
	res := r.DB.WithContext(ctx).Model(&model.CommunityPost{}).
		Where("community_id = ? AND id = ?", p.CommunityID, p.ID).
		Updates(cols)
	return translate(res.Error)
}

func (r *PostRepository) SetPinned(ctx context.Context, communityID, id uint64, pinned bool) error {
	res := r.DB.WithContext(ctx).Model(&model.CommunityPost{}).
		Where("community_id = ? AND id = ?", communityID, id).
		Update("is_pinned", pinned)
	return res.Error
}

func (r *PostRepository) SetStatus(ctx context.Context, p *model.CommunityPost, to moderation.Status, actorID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transition(tx, &model.CommunityPost{}, postRef(p), moderation.StatusPending, to, actorID)
	})
}

func (r *PostRepository) Delete(ctx context.Context, p *model.CommunityPost, actorID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return remove(tx, &model.CommunityPost{}, postRef(p), actorID)
	})
}
