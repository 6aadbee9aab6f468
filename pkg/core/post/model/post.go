package model

import (
	"time"

	"gorm.io/gorm"
)

// Post 帖子密码按提交原样保存，仅用于修改/删除时比对
type Post struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Author    string    `gorm:"type:varchar(100);not null"`
	Password  string    `gorm:"type:varchar(255);not null"`
	Content   string    `gorm:"type:text;not null"`
	WriteDate time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 定义映射表名
func (Post) TableName() string {
	return "posts"
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Post{})
}
