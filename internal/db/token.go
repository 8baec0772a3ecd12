package db

import "gorm.io/gorm"

// AuthToken is an opaque API token issued at login and presented in the
// Authorization header. Tokens stay valid until revoked by logout.
type AuthToken struct {
	gorm.Model
	Key    string `gorm:"uniqueIndex;not null"`
	UserID uint   `gorm:"index;not null"`
	User   User
}
