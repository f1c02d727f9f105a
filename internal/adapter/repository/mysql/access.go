package mysql

import (
	"context"
	"errors"

	"policylend/internal/domain/access"

	"gorm.io/gorm"
)

type AccessRepository struct{ db *gorm.DB }

func NewAccessRepository(db *gorm.DB) *AccessRepository { return &AccessRepository{db: db} }

func (r *AccessRepository) HasRole(ctx context.Context, identity string, role access.Role) (bool, error) {
	var g access.Grant
	res := r.db.WithContext(ctx).
		Where("identity = ? AND role = ?", identity, role).
		First(&g)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, res.Error
	}
	return true, nil
}

func (r *AccessRepository) Grant(ctx context.Context, identity string, role access.Role) error {
	// Re-granting an existing role is a no-op.
	if ok, err := r.HasRole(ctx, identity, role); err != nil || ok {
		return err
	}
	return r.db.WithContext(ctx).Create(&access.Grant{Identity: identity, Role: role}).Error
}

func (r *AccessRepository) Revoke(ctx context.Context, identity string, role access.Role) error {
	return r.db.WithContext(ctx).
		Where("identity = ? AND role = ?", identity, role).
		Delete(&access.Grant{}).Error
}
