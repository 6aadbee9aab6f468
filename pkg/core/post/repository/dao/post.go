package dao

import (
	"context"

	"post-board/pkg/core/post/model"
)

// ContentUpdate 可修改的字段
type ContentUpdate struct {
	Title   string
	Author  string
	Content string
}

type PostRepository interface {
	FindByID(ctx context.Context, id uint64) (model.Post, error)
	Create(ctx context.Context, post *model.Post) error
	// UpdateContent 在同一事务内加锁、比对密码并更新 title/author/content
	UpdateContent(ctx context.Context, id uint64, password string, update ContentUpdate) (model.Post, error)
	// DeleteByID 在同一事务内加锁、比对密码并物理删除
	DeleteByID(ctx context.Context, id uint64, password string) error
	FindAllOrderByWriteDateDesc(ctx context.Context) ([]model.Post, error)
	FindAllByTitleContaining(ctx context.Context, title string) ([]model.Post, error)
}
