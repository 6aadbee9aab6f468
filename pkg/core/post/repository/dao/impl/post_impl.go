package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/post/model"
	"post-board/pkg/core/post/repository/dao"
)

const orderByWriteDateDesc = "write_date DESC, id DESC"

type GormPostRepository struct {
	db *gorm.DB
}

var _ dao.PostRepository = (*GormPostRepository)(nil)

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func wrapGormError(err error) error {
	return bizerr.WrapGormError(err, bizerr.ErrPostNotFound, bizerr.ErrDatabaseInternal)
}

// findError 未找到时带上帖子ID
func findError(err error, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return bizerr.NewPostNotFound(id)
	}
	return wrapGormError(err)
}

func (r *GormPostRepository) FindByID(ctx context.Context, id uint64) (model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return model.Post{}, findError(err, id)
	}
	return post, nil
}

func (r *GormPostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("%w: post creation failed", wrapGormError(err))
	}
	return nil
}

// lockForWrite 行锁读取并比对密码
func lockForWrite(tx *gorm.DB, id uint64, password string) (model.Post, error) {
	var post model.Post
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, id).Error; err != nil {
		return model.Post{}, findError(err, id)
	}
	if post.Password != password {
		return model.Post{}, bizerr.ErrPasswordMismatch
	}
	return post, nil
}

func (r *GormPostRepository) UpdateContent(ctx context.Context, id uint64, password string, update dao.ContentUpdate) (model.Post, error) {
	var updated model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockForWrite(tx, id, password)
		if err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&model.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"title":      update.Title,
				"author":     update.Author,
				"content":    update.Content,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("%w: post update failed", wrapGormError(result.Error))
		}

		// password 与 write_date 保持不变
		post.Title = update.Title
		post.Author = update.Author
		post.Content = update.Content
		post.UpdatedAt = now
		updated = post
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}
	return updated, nil
}

func (r *GormPostRepository) DeleteByID(ctx context.Context, id uint64, password string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockForWrite(tx, id, password)
		if err != nil {
			return err
		}

		result := tx.Delete(&model.Post{}, post.ID)
		if result.Error != nil {
			return fmt.Errorf("%w: post delete failed", wrapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return bizerr.ErrPostNotFound
		}
		return nil
	})
}

func (r *GormPostRepository) FindAllOrderByWriteDateDesc(ctx context.Context) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	if err := r.db.WithContext(ctx).Order(orderByWriteDateDesc).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("%w: post list failed", wrapGormError(err))
	}
	return posts, nil
}

func (r *GormPostRepository) FindAllByTitleContaining(ctx context.Context, title string) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	err := r.db.WithContext(ctx).
		Where("title LIKE ? ESCAPE '!'", "%"+escapeLike(title)+"%").
		Order(orderByWriteDateDesc).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: post search failed", wrapGormError(err))
	}
	return posts, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
