package repository

import (
	"context"

	"learning-platform/internal/domain/enrollments"

	"gorm.io/gorm"
)

type grantRepo struct{ db *gorm.DB }

func (r *grantRepo) Append(ctx context.Context, g *enrollments.GlobalAccessGrant) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *grantRepo) ListForUser(ctx context.Context, userID uint) ([]enrollments.GlobalAccessGrant, error) {
	var out []enrollments.GlobalAccessGrant
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
