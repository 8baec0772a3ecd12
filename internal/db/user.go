package db

import "gorm.io/gorm"

// User 定义了账号模型
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Email    string
	Password string `gorm:"not null"`
	Profile  Profile
}

// Profile holds the optional extended fields attached to a user account.
type Profile struct {
	gorm.Model
	UserID       uint `gorm:"uniqueIndex;not null"`
	DisplayName  string
	Bio          string
	AvatarURL    string
	AvatarWidth  int
	AvatarHeight int
}
