package service

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/common/event"
	"post-board/pkg/core/post/model"
	"post-board/pkg/core/post/repository/dao"
)

const (
	maxTitleLen  = 200
	maxAuthorLen = 100
)

type PostInput struct {
	Title    string
	Author   string
	Password string
	Content  string
}

// PostView 对外视图，不含密码
type PostView struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	WriteDate time.Time `json:"writeDate"`
}

func View(p model.Post) PostView {
	return PostView{
		ID:        p.ID,
		Title:     p.Title,
		Author:    p.Author,
		Content:   p.Content,
		WriteDate: p.WriteDate,
	}
}

type PostService struct {
	posts  dao.PostRepository
	events event.Publisher
	now    func() time.Time
}

func NewPostService(posts dao.PostRepository, events event.Publisher) *PostService {
	if events == nil {
		events = event.NopPublisher{}
	}
	return &PostService{posts: posts, events: events, now: time.Now}
}

func validatePost(in PostInput) error {
	fields := map[string]string{}
	switch n := utf8.RuneCountInString(in.Title); {
	case strings.TrimSpace(in.Title) == "":
		fields["title"] = "title is required"
	case n > maxTitleLen:
		fields["title"] = "title must be at most 200 characters"
	}
	switch n := utf8.RuneCountInString(in.Author); {
	case strings.TrimSpace(in.Author) == "":
		fields["author"] = "author is required"
	case n > maxAuthorLen:
		fields["author"] = "author must be at most 100 characters"
	}
	if in.Password == "" {
		fields["password"] = "password is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "content is required"
	}
	if len(fields) > 0 {
		return bizerr.NewInvalidInput(fields)
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, in PostInput) (model.Post, error) {
	if err := validatePost(in); err != nil {
		return model.Post{}, err
	}

	post := model.Post{
		Title:     in.Title,
		Author:    in.Author,
		Password:  in.Password,
		Content:   in.Content,
		WriteDate: s.now(),
	}
	if err := s.posts.Create(ctx, &post); err != nil {
		return model.Post{}, err
	}

	hlog.CtxInfof(ctx, "post created id=%d author=%s", post.ID, post.Author)
	event.PublishQuietly(ctx, s.events, event.PostCreated, key(post.ID), View(post))
	return post, nil
}

// List 按 write_date 倒序，同一时间按 id 倒序
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	return s.posts.FindAllOrderByWriteDateDesc(ctx)
}

// Search 标题模糊查询，空关键字等同于 List
func (s *PostService) Search(ctx context.Context, title string) ([]model.Post, error) {
	if strings.TrimSpace(title) == "" {
		return s.List(ctx)
	}
	return s.posts.FindAllByTitleContaining(ctx, title)
}

func (s *PostService) Get(ctx context.Context, id uint64) (model.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// Update 只覆盖 title/author/content，密码错误时记录保持不变
func (s *PostService) Update(ctx context.Context, id uint64, in PostInput) (model.Post, error) {
	// 先确认帖子存在，再校验字段
	if _, err := s.posts.FindByID(ctx, id); err != nil {
		return model.Post{}, err
	}
	if err := validatePost(in); err != nil {
		return model.Post{}, err
	}

	post, err := s.posts.UpdateContent(ctx, id, in.Password, dao.ContentUpdate{
		Title:   in.Title,
		Author:  in.Author,
		Content: in.Content,
	})
	if err != nil {
		return model.Post{}, err
	}

	hlog.CtxInfof(ctx, "post updated id=%d", post.ID)
	event.PublishQuietly(ctx, s.events, event.PostUpdated, key(post.ID), View(post))
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id uint64, password string) error {
	if err := s.posts.DeleteByID(ctx, id, password); err != nil {
		return err
	}

	hlog.CtxInfof(ctx, "post deleted id=%d", id)
	event.PublishQuietly(ctx, s.events, event.PostDeleted, key(id), map[string]uint64{"id": id})
	return nil
}

func key(id uint64) string {
	return strconv.FormatUint(id, 10)
}
