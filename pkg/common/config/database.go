package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN 根据驱动拼接连接串，显式配置的 DSN 优先
func (c *Config) DSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	switch c.Database.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Database.Host,
			c.Database.Port,
			c.Database.Username,
			c.Database.Password,
			c.Database.DBName)
	case "sqlite":
		return c.Database.DBName
	}

	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	// 自动切换连接方式
	if c.Database.UseUnixSock {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host, // 这里host存储的是socket路径
			c.Database.DBName,
			charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		charsetParam)
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Database.Driver {
	case "", "mysql":
		return mysql.Open(c.DSN()), nil
	case "postgres":
		return postgres.Open(c.DSN()), nil
	case "sqlite":
		return sqlite.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// GormConfig 配置GORM日志级别，并让方言翻译唯一约束等驱动错误
func (c *Config) GormConfig() *gorm.Config {
	gormConfig := &gorm.Config{TranslateError: true}
	switch c.Database.LogLevel {
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	case "warn":
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	return gormConfig
}

func (c *Config) InitDB() (*gorm.DB, error) {
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	// 初始化数据库连接
	db, err := gorm.Open(dialector, c.GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)

	return db, nil
}
