package rdb

import (
	"context"
	"errors"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindOrCreateByPhone 幂等：并发创建撞唯一索引时回读已存在的行
func (r *UserRepository) FindOrCreateByPhone(ctx context.Context, phone, email string) (*model.User, bool, error) {
	user, err := r.FindByPhone(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, moderation.ErrNotFound) {
		return nil, false, err
	}
	p := phone
	user = &model.User{Phone: &p, Email: email, Role: moderation.RoleNeighbor}
	if err := r.Create(ctx, user); err != nil {
		if errors.Is(err, moderation.ErrConflict) {
			existing, ferr := r.FindByPhone(ctx, phone)
			return existing, false, ferr
		}
		return nil, false, err
	}
	return user, true, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint64, role moderation.Role) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("role", role).Error
}
