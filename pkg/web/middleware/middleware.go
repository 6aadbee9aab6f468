package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/hertz-contrib/cors"
	jwth "github.com/hertz-contrib/jwt"

	"post-board/pkg/common/config"
	bizerr "post-board/pkg/common/errors"
	"post-board/pkg/web/model"
)

const (
	// IdentityKey JWT 中间件写入上下文的用户名键
	IdentityKey = "username"

	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware 透传或生成请求ID
func RequestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next(c)
	}
}

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		// 结构化日志输出
		hlog.CtxInfof(c, "| %s | %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.GetString(requestIDKey),
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

func writeError(ctx *app.RequestContext, status int, reason, message string, fields map[string]string) {
	ctx.AbortWithStatusJSON(status, model.ErrorRes{
		Timestamp:   time.Now(),
		Status:      status,
		Error:       reason,
		Message:     message,
		Path:        string(ctx.Path()),
		FieldErrors: fields,
	})
}

// ErrorHandlerMiddleware 把处理器通过 ctx.Error 挂上的错误转换为统一响应
func ErrorHandlerMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		ctx.Next(c)

		last := ctx.Errors.Last()
		if last == nil {
			return
		}

		status := bizerr.StatusOf(last)
		message := last.Error()
		if detail, ok := last.Meta.(string); ok && detail != "" {
			message += ": " + detail
		}
		switch {
		case status >= http.StatusInternalServerError:
			hlog.CtxErrorf(c, "request failed path=%s: %v", ctx.Path(), last)
			if cfg.IsProd() || errors.Is(last, bizerr.ErrDatabaseInternal) {
				message = "internal server error"
			}
		default:
			hlog.CtxInfof(c, "request rejected status=%d path=%s: %v", status, ctx.Path(), last)
		}

		writeError(ctx, status, bizerr.Reason(last), message, bizerr.FieldErrors(last))
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run main.go
*/

// RecoveryMiddleware 增强型异常捕获（带配置依赖版本）
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				// 获取调用堆栈
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				// 生产环境不暴露细节
				message := "internal server error"
				if !cfg.IsProd() {
					message = fmt.Sprintf("%v", err)
				}
				writeError(ctx, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), message, nil)
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	conf := cors.Config{
		AllowOrigins:     corsConfig.AllowOrigins,
		AllowMethods:     corsConfig.AllowMethods,
		AllowHeaders:     corsConfig.AllowHeaders,
		ExposeHeaders:    corsConfig.ExposeHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAge,
	}
	// 动态校验来源
	if len(corsConfig.TrustedDomains) > 0 {
		conf.AllowOriginFunc = func(origin string) bool {
			for _, allowed := range corsConfig.AllowOrigins {
				if origin == allowed {
					return true
				}
			}
			return isTrustedOrigin(origin, corsConfig.TrustedDomains)
		}
	}
	return cors.New(conf)
}

// isTrustedOrigin 来源主机等于受信域名或为其子域名
func isTrustedOrigin(origin string, domains []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimPrefix(domain, "."))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// TimeoutMiddleware 为后续处理器（包括数据库访问）设置截止时间
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if seconds <= 0 {
			ctx.Next(c)
			return
		}

		timeoutCtx, cancel := context.WithTimeout(c, time.Duration(seconds)*time.Second)
		defer cancel()

		ctx.Next(timeoutCtx) // 关键：传入超时上下文

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "request timeout path=%s", ctx.Path())
		}
	}
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(cfg config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`<script.*?>|<\/script>|alert\(|onerror=`)
	sqlInjectRegex := regexp.MustCompile(`(?i)\b(union\s+select|drop\s+table|insert\s+into|delete\s+from)\b`)

	allowed := make(map[string]bool, len(cfg.AllowedMethods))
	for _, m := range cfg.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：检查User-Agent
		if cfg.RequireUserAgent && isInvalidUserAgent(ctx) {
			securityResponse(ctx, "missing required header: User-Agent", http.StatusBadRequest)
			return
		}

		// 防护机制2：请求体大小限制
		if cfg.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > cfg.MaxBodySize {
			securityResponse(ctx, "request body exceeds max size", http.StatusRequestEntityTooLarge)
			return
		}

		// 防护机制3：参数恶意字符检查
		if hasMaliciousContent(ctx, xssRegex, sqlInjectRegex) {
			securityResponse(ctx, "request contains invalid characters", http.StatusUnprocessableEntity)
			return
		}

		// 防护机制4：检查HTTP方法
		if !allowed[string(ctx.Method())] {
			securityResponse(ctx, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx.Next(c)
	}
}

// JWTAuthMiddleware 验证 Authorization: Bearer 令牌，并把用户名写入上下文
func JWTAuthMiddleware(cfg *config.JWTAuthConfig) app.HandlerFunc {
	authMiddleware, err := jwth.New(&jwth.HertzJWTMiddleware{
		Realm:            cfg.Realm,
		SigningAlgorithm: cfg.SigningMethod,
		Key:              []byte(cfg.Secret),
		Timeout:          cfg.ExpireDuration,
		TimeFunc:         time.Now,
		IdentityKey:      IdentityKey,
		TokenLookup:      "header: Authorization",
		TokenHeadName:    "Bearer",
		// 签发方等业务声明由 AuthService.ParseToken 校验，不符时同样返回 401
		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			username, _ := data.(string)
			return username != ""
		},
		Unauthorized: handleJWTError,
	})
	if err != nil {
		panic(fmt.Sprintf("JWT 中间件初始化失败: %v", err))
	}
	return authMiddleware.MiddlewareFunc()
}

func handleJWTError(ctx context.Context, c *app.RequestContext, code int, message string) {
	hlog.CtxWarnf(ctx, "JWT Error (code=%d) path=%s: %s", code, c.Path(), message)
	writeError(c, code, http.StatusText(code), message, nil)
}

// 辅助方法：判断User-Agent合法性
func isInvalidUserAgent(ctx *app.RequestContext) bool {
	ua := string(ctx.GetHeader("User-Agent"))
	return strings.TrimSpace(ua) == ""
}

// 带性能优化的版本
func hasMaliciousContent(ctx *app.RequestContext, xss *regexp.Regexp, sql *regexp.Regexp) bool {
	var found int32

	check := func(data []byte) bool {
		return xss.Match(data) || sql.Match(data)
	}

	visitor := func(key, value []byte) {
		if atomic.LoadInt32(&found) == 1 {
			return // 已经找到匹配，跳过后续检查
		}
		if check(key) || check(value) {
			atomic.StoreInt32(&found, 1)
		}
	}

	// 检查Query参数
	ctx.QueryArgs().VisitAll(visitor)
	if atomic.LoadInt32(&found) == 1 {
		return true
	}

	// 检查Post表单参数
	ctx.PostArgs().VisitAll(visitor)
	return atomic.LoadInt32(&found) == 1
}

// 安全响应统一处理
func securityResponse(ctx *app.RequestContext, msg string, status int) {
	hlog.Warnf("SecurityAlert[status=%d] path=%s: %s", status, ctx.Path(), msg)
	writeError(ctx, status, http.StatusText(status), msg, nil)
}
