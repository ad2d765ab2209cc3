package repository

import (
	"context"

	"learning-platform/internal/domain/users"

	"gorm.io/gorm"
)

type userRepo struct{ db *gorm.DB }

func (r *userRepo) FindByID(ctx context.Context, id uint) (*users.User, error) {
	var u users.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) SetPremium(ctx context.Context, id uint, premium bool) error {
	res := r.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", id).
		Update("has_premium_access", premium)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
