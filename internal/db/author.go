package db

import "gorm.io/gorm"

// Author 定义了作者模型
type Author struct {
	gorm.Model
	Name  string `gorm:"not null"`
	Books []Book
}
