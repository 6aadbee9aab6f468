package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	bizerr "post-board/pkg/common/errors"
	postmodel "post-board/pkg/core/post/model"
	"post-board/pkg/core/post/service"
	"post-board/pkg/web/model"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func postID(c *app.RequestContext) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, bizerr.NewBadRequest("post id must be a positive integer")
	}
	return id, nil
}

func views(posts []postmodel.Post) []service.PostView {
	out := make([]service.PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, service.View(p))
	}
	return out
}

func (h *PostHandler) List(ctx context.Context, c *app.RequestContext) {
	var req model.SearchPostReq
	if err := c.BindAndValidate(&req); err != nil {
		_ = c.Error(bizerr.NewBadRequest(err.Error()))
		return
	}

	posts, err := h.posts.Search(ctx, req.Title)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, views(posts))
}

func (h *PostHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req model.PostReq
	if err := c.BindAndValidate(&req); err != nil {
		_ = c.Error(bizerr.NewBadRequest(err.Error()))
		return
	}

	post, err := h.posts.Create(ctx, service.PostInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.View(post))
}

func (h *PostHandler) Get(ctx context.Context, c *app.RequestContext) {
	id, err := postID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.View(post))
}

func (h *PostHandler) Update(ctx context.Context, c *app.RequestContext) {
	id, err := postID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req model.PostReq
	if err := c.BindAndValidate(&req); err != nil {
		_ = c.Error(bizerr.NewBadRequest(err.Error()))
		return
	}

	post, err := h.posts.Update(ctx, id, service.PostInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.View(post))
}

func (h *PostHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, err := postID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req model.DeletePostReq
	if err := c.BindAndValidate(&req); err != nil {
		_ = c.Error(bizerr.NewBadRequest(err.Error()))
		return
	}

	if err := h.posts.Delete(ctx, id, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	c.String(http.StatusOK, "post deleted successfully\ndeleted post id: %d", id)
}
