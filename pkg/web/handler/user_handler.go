// ----------- pkg/web/handler/user_handler.go -----------
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/core/user/service"
	"post-board/pkg/web/middleware"
	"post-board/pkg/web/model"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

func (h *UserHandler) Signup(ctx context.Context, c *app.RequestContext) {
	var req model.SignupReq
	if err := c.BindAndValidate(&req); err != nil {
		_ = c.Error(bizerr.NewBadRequest(err.Error()))
		return
	}

	user, err := h.auth.Signup(ctx, service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, model.SignupRes{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Message:  "signup completed successfully",
	})
}

func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := c.BindAndValidate(&req); err != nil {
		_ = c.Error(bizerr.NewBadRequest(err.Error()))
		return
	}

	res, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Authorization", "Bearer "+res.Token)
	c.JSON(http.StatusOK, model.LoginRes{
		Username: res.User.Username,
		Role:     res.User.Role,
		Token:    res.Token,
	})
}

// Me 返回令牌对应的用户，令牌声明由 AuthService 再次解析校验
func (h *UserHandler) Me(ctx context.Context, c *app.RequestContext) {
	token := strings.TrimSpace(strings.TrimPrefix(string(c.GetHeader("Authorization")), "Bearer "))
	claims, err := h.auth.ParseToken(token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if identity := c.GetString(middleware.IdentityKey); identity != claims.Username {
		_ = c.Error(bizerr.ErrInvalidToken)
		return
	}

	user, err := h.auth.Profile(ctx, claims.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, model.UserRes{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}
