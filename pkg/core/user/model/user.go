package model

import (
	"time"

	"gorm.io/gorm"
)

// 角色
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(10);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:USER"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

// Public 对外视图，不含密码哈希
type Public struct {
	ID       uint64
	Username string
	Role     string
}

func (u User) Public() Public {
	return Public{ID: u.ID, Username: u.Username, Role: u.Role}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
