package main

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"post-board/pkg/common/config"
	"post-board/pkg/common/event"
	postmodel "post-board/pkg/core/post/model"
	usermodel "post-board/pkg/core/user/model"
	"post-board/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	hlog.SetLevel(cfg.HlogLevel())

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		hlog.Fatalf("Failed to initialize database: %v", err)
	}
	if err := usermodel.AutoMigrate(db); err != nil {
		hlog.Fatalf("Failed to migrate users: %v", err)
	}
	if err := postmodel.AutoMigrate(db); err != nil {
		hlog.Fatalf("Failed to migrate posts: %v", err)
	}

	// 事件发布（未启用 Kafka 时为空实现）
	events, err := event.Dial(cfg.Kafka)
	if err != nil {
		hlog.Fatalf("Failed to connect kafka: %v", err)
	}

	// 注入到DAO层 → Service → Handler
	handlers, err := router.NewHandlers(cfg, db, events)
	if err != nil {
		hlog.Fatalf("Failed to build handlers: %v", err)
	}

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)
	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if err := events.Close(); err != nil {
			hlog.CtxErrorf(ctx, "close event publisher: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	// 注册路由
	router.RegisterAPIs(h, cfg, handlers)

	// 启动服务
	h.Spin()
}
