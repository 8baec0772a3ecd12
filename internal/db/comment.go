package db

import "gorm.io/gorm"

// Comment 定义了评论模型
type Comment struct {
	gorm.Model
	PostID  uint `gorm:"not null;index"`
	UserID  uint `gorm:"not null;index"`
	User    User
	Content string `gorm:"not null"`
}
