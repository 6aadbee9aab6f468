package dao

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/user/model"
	"post-board/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func wrapGormError(err error) error {
	return bizerr.WrapGormError(err, bizerr.ErrUserNotFound, bizerr.ErrDuplicateUsername)
}

// Check username existence
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check username", wrapGormError(err))
	}
	return count > 0, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return model.User{}, wrapGormError(err)
	}
	return user, nil
}

// Create new user with transaction
func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if bizerr.IsDuplicateError(err) {
				return bizerr.ErrDuplicateUsername
			}
			return fmt.Errorf("%w: user creation failed", wrapGormError(err))
		}
		return nil
	})
}
