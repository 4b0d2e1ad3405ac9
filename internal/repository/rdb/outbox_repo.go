package rdb

import (
	"context"

	"barriored/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB       *gorm.DB
	MaxRetry int
}

// List 取待投递和待重试的事件，超过重试上限的留在表里人工处理
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.ModerationOutbox, error) {
	maxRetry := r.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 10
	}
	var list []model.ModerationOutbox
	if err := r.DB.WithContext(ctx).
		Where("status IN ? AND retry < ?", []int{model.OutboxNew, model.OutboxRetrying}, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败，重试次数加一
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ModerationOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxRetrying, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ModerationOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
