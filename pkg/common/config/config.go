package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type LogConfig struct {
	Level string `json:"level"` // trace/debug/info/notice/warn/error/fatal
}

type SecurityConfig struct {
	MaxBodySize      int64    `json:"maxBodySize"` // 单位：字节
	RequireUserAgent bool     `json:"requireUserAgent"`
	AllowedMethods   []string `json:"allowedMethods"`
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout"` // 单位：秒
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

type JWTAuthConfig struct {
	Secret         string        `json:"secret"`
	ExpireDuration time.Duration `json:"expireDuration"`
	Issuer         string        `json:"issuer"`
	SigningMethod  string        `json:"signingMethod"`
	Realm          string        `json:"realm"` // JWT领域标识
}

type MiddlewareConfig struct {
	Security SecurityConfig `json:"security"`
	JWT      JWTAuthConfig  `json:"jwt"`
	Timeout  TimeoutConfig  `json:"timeout"`
	CORS     CORSConfig     `json:"cors"`
}

type DatabaseConfig struct {
	Driver      string `json:"driver"`      // mysql / postgres / sqlite
	DSN         string `json:"dsn"`         // 直接指定DSN时忽略下列字段
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称，sqlite 时为文件路径
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
}

type AuthConfig struct {
	BcryptCost int `json:"bcryptCost"`
}

type KafkaConfig struct {
	Enabled     bool     `json:"enabled"`
	Brokers     []string `json:"brokers"`
	TopicPrefix string   `json:"topicPrefix"`
	MaxRetry    int      `json:"maxRetry"`
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Log        LogConfig        `json:"log"`
	Database   DatabaseConfig   `json:"database"`
	Auth       AuthConfig       `json:"auth"`
	Kafka      KafkaConfig      `json:"kafka"`
	Middleware MiddlewareConfig `json:"middleware"`
	Env        string           `json:"env"` // 环境标识
}

var defaultConfig = Config{
	Server: ServerConfig{
		Address: ":8080",
	},
	Log: LogConfig{
		Level: "info",
	},
	Database: DatabaseConfig{
		Driver:      "mysql",
		Host:        "localhost",
		Port:        3306,
		Username:    "root",
		Password:    "root",
		DBName:      "post_board",
		UseUnixSock: false,
		MinPoolSize: 5,
		MaxPoolSize: 50,
		LogLevel:    "warn",
	},
	Auth: AuthConfig{
		BcryptCost: 10,
	},
	Kafka: KafkaConfig{
		Enabled:     false,
		Brokers:     []string{"localhost:9092"},
		TopicPrefix: "post-board",
		MaxRetry:    5,
	},
	Middleware: MiddlewareConfig{
		Security: SecurityConfig{
			MaxBodySize:      10 << 20, // 10MB
			RequireUserAgent: true,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		},
		JWT: JWTAuthConfig{ // JWT默认配置
			Secret:         "dev-secret-change-me-in-production", // 开发环境默认密钥
			ExpireDuration: 24 * time.Hour,
			Issuer:         "post-board",
			SigningMethod:  "HS256",
			Realm:          "post-board",
		},
		Timeout: TimeoutConfig{
			RequestTimeout: 15,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
	},
	Env: "development",
}

// Default 返回默认配置的副本
func Default() *Config {
	config := defaultConfig
	return &config
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	config := Default()

	// 1. 尝试从配置文件加载
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. 从环境变量覆盖
	loadFromEnv(config)

	return config
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.json",               // 当前目录
		"../config.json",              // 上级目录
		"/etc/post-board/config.json", // 系统配置目录
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile 从文件加载配置
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	// 服务器与运行环境
	envString("SERVER_ADDR", &config.Server.Address)
	envString("APP_ENV", &config.Env)
	envLower("LOG_LEVEL", &config.Log.Level)

	// 中间件配置
	envInt64("MAX_BODY_SIZE", &config.Middleware.Security.MaxBodySize)
	envBool("REQUIRE_USER_AGENT", &config.Middleware.Security.RequireUserAgent)
	envInt("REQUEST_TIMEOUT", &config.Middleware.Timeout.RequestTimeout)
	envList("CORS_ALLOW_ORIGINS", &config.Middleware.CORS.AllowOrigins)

	/****** JWT 配置 ******/
	envString("JWT_SECRET", &config.Middleware.JWT.Secret)
	envDuration("JWT_EXPIRATION", &config.Middleware.JWT.ExpireDuration)
	envString("JWT_ISSUER", &config.Middleware.JWT.Issuer)
	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		if alg, ok := normalizeAlgorithm(v); ok {
			config.Middleware.JWT.SigningMethod = alg
		} else {
			hlog.Warnf("Unsupported JWT algorithm: %s", v)
		}
	}
	envInt("BCRYPT_COST", &config.Auth.BcryptCost)

	// 数据库配置
	envLower("DB_DRIVER", &config.Database.Driver)
	envString("DB_DSN", &config.Database.DSN)
	envString("DB_HOST", &config.Database.Host)
	envInt("DB_PORT", &config.Database.Port)
	envString("DB_USER", &config.Database.Username)
	envString("DB_PASSWORD", &config.Database.Password)
	envString("DB_NAME", &config.Database.DBName)
	envBool("DB_SOCKET", &config.Database.UseUnixSock)
	envInt("DB_MIN_POOL", &config.Database.MinPoolSize)
	envInt("DB_MAX_POOL", &config.Database.MaxPoolSize)
	envLower("DB_LOG_LEVEL", &config.Database.LogLevel)

	// 消息队列配置
	envBool("KAFKA_ENABLED", &config.Kafka.Enabled)
	envList("KAFKA_BROKERS", &config.Kafka.Brokers)
	envString("KAFKA_TOPIC_PREFIX", &config.Kafka.TopicPrefix)
	envInt("KAFKA_MAX_RETRY", &config.Kafka.MaxRetry)
}

// normalizeAlgorithm 只接受 HMAC 系列，统一为大写
func normalizeAlgorithm(v string) (string, bool) {
	alg := strings.ToUpper(strings.ReplaceAll(v, " ", ""))
	switch alg {
	case "HS256", "HS384", "HS512":
		return alg, true
	}
	return "", false
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envLower(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.ToLower(v)
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			hlog.Warnf("Invalid %s: %v", key, err)
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		} else {
			hlog.Warnf("Invalid %s: %v", key, err)
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = parseBool(v)
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		} else {
			hlog.Warnf("Invalid %s format: %v", key, err)
		}
	}
}

func envList(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		*dst = splitEnvList(v)
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel 将配置的日志级别转换为 hlog.Level
func (c *Config) HlogLevel() hlog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
