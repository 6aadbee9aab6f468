package dao

import (
	"context"

	"post-board/pkg/core/user/model"
)

type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, user *model.User) error
}
