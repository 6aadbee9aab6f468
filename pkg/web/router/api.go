package router

import (
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"
	"gorm.io/gorm"

	"post-board/pkg/common/config"
	"post-board/pkg/common/event"
	postdao "post-board/pkg/core/post/repository/dao/impl"
	postservice "post-board/pkg/core/post/service"
	userdao "post-board/pkg/core/user/repository/dao/impl"
	userservice "post-board/pkg/core/user/service"
	"post-board/pkg/web/handler"
	"post-board/pkg/web/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health *handler.HealthCheckHandler
	User   *handler.UserHandler
	Post   *handler.PostHandler
}

// NewHandlers 组装 DAO → Service → Handler
func NewHandlers(cfg *config.Config, db *gorm.DB, events event.Publisher) (Handlers, error) {
	jwtCfg := cfg.Middleware.JWT
	tokens, err := userservice.NewTokenManager(jwtCfg.Secret, jwtCfg.SigningMethod, jwtCfg.Issuer, jwtCfg.ExpireDuration)
	if err != nil {
		return Handlers{}, fmt.Errorf("init token manager: %w", err)
	}

	authService := userservice.NewAuthService(userdao.NewGormUserRepository(db), tokens, events, cfg.Auth.BcryptCost)
	postService := postservice.NewPostService(postdao.NewGormPostRepository(db), events)

	return Handlers{
		Health: handler.NewHealthCheckHandler(db),
		User:   handler.NewUserHandler(authService),
		Post:   handler.NewPostHandler(postService),
	}, nil
}

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, hs Handlers) {
	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(), // 包在错误中间件外层，记录最终状态码
		middleware.ErrorHandlerMiddleware(cfg),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
	)

	// 基础接口组
	h.GET("/health", hs.Health.AdvancedHealthCheck)

	jwtAuth := middleware.JWTAuthMiddleware(&cfg.Middleware.JWT)

	// 认证接口
	registerAuth(h.Group("/auth"), hs.User, jwtAuth)

	// 帖子接口
	registerPosts(h.Group("/posts"), hs.Post)

	// 网关前缀：与根路径共享同一组处理器
	gateway := h.Group("/api/v1")
	{
		gateway.GET("/health", hs.Health.AdvancedHealthCheck)
		registerAuth(gateway.Group("/auth"), hs.User, jwtAuth)
		registerPosts(gateway.Group("/posts"), hs.Post)
	}
}

func registerAuth(g *route.RouterGroup, u *handler.UserHandler, jwtAuth app.HandlerFunc) {
	g.POST("/signup", u.Signup)
	g.POST("/login", u.Login)

	// 需要身份认证的接口
	g.GET("/me", jwtAuth, u.Me)
}

func registerPosts(g *route.RouterGroup, p *handler.PostHandler) {
	g.GET("", p.List)
	g.POST("", p.Create)
	g.GET("/:id", p.Get)
	g.PUT("/:id", p.Update)
	g.DELETE("/:id", p.Delete)
}
