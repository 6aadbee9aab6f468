package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/crypto/bcrypt"

	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/common/event"
	"post-board/pkg/core/user/model"
	"post-board/pkg/core/user/repository/dao"
)

type SignupInput struct {
	Username string
	Password string
	Role     string
}

type LoginResult struct {
	User      model.Public
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users      dao.UserRepository
	tokens     *TokenManager
	events     event.Publisher
	bcryptCost int
}

func NewAuthService(users dao.UserRepository, tokens *TokenManager, events event.Publisher, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if events == nil {
		events = event.NopPublisher{}
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		events:     events,
		bcryptCost: bcryptCost,
	}
}

// Signup 校验 → 查重 → 哈希 → 落库
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.Public, error) {
	role, fields := validateSignup(in)
	if fields != nil {
		return model.Public{}, bizerr.NewInvalidInput(fields)
	}

	exists, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return model.Public{}, err
	}
	if exists {
		return model.Public{}, bizerr.ErrDuplicateUsername
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return model.Public{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     in.Username,
		PasswordHash: string(hashedPwd),
		Role:         role,
	}
	// 并发注册同名用户时由唯一索引兜底
	if err := s.users.Create(ctx, &user); err != nil {
		return model.Public{}, err
	}

	hlog.CtxInfof(ctx, "user signed up id=%d username=%s role=%s", user.ID, user.Username, user.Role)
	event.PublishQuietly(ctx, s.events, event.UserCreated, user.Username, user.Public())

	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, err
	}

	// 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return LoginResult{}, bizerr.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}

	hlog.CtxInfof(ctx, "user logged in id=%d username=%s", user.ID, user.Username)
	return LoginResult{User: user.Public(), Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) ParseToken(token string) (Claims, error) {
	return s.tokens.Parse(token)
}

// Profile 已认证用户的公开信息
func (s *AuthService) Profile(ctx context.Context, username string) (model.Public, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return model.Public{}, err
	}
	return user.Public(), nil
}
