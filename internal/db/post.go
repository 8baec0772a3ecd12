package db

import (
	"time"

	"gorm.io/gorm"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Content     string
	UserID      uint `gorm:"not null;index"`
	User        User
	PublishedAt time.Time `gorm:"index"`
	Tags        []Tag     `gorm:"many2many:post_tags;"`
}
