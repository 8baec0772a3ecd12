package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/inkshelf/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenInvalid       = errors.New("invalid or revoked token")
)

// UserService handles accounts, opaque API tokens and profiles.
type UserService struct {
	db *gorm.DB
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileInput carries the editable profile fields. Nil pointers are left
// untouched.
type ProfileInput struct {
	Email       *string
	DisplayName *string
	Bio         *string
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register creates a user with a bcrypt hashed password, an empty profile
// and a first API token.
func (s *UserService) Register(input RegisterInput) (*db.User, string, error) {
	errs := FieldErrors{}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		errs.Add("username", "This field is required.")
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && !strings.Contains(email, "@") {
		errs.Add("email", "Enter a valid email address.")
	}

	if input.Password == "" {
		errs.Add("password", "This field is required.")
	} else if len(input.Password) < 8 {
		errs.Add("password", "Password must be at least 8 characters long.")
	}

	if username != "" {
		var count int64
		if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return nil, "", err
		}
		if count > 0 {
			errs.Add("username", "A user with that username already exists.")
		}
	}

	if err := errs.orNil(); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := db.User{Username: username, Email: email, Password: string(hashed)}
	var key string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&db.Profile{UserID: user.ID}).Error; err != nil {
			return err
		}
		key, err = issueToken(tx, user.ID)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	return &user, key, nil
}

// Login verifies credentials and issues a fresh token. Existing tokens stay
// valid so other clients are not logged out.
func (s *UserService) Login(username, password string) (*db.User, string, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	key, err := issueToken(s.db, user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, key, nil
}

// Authenticate resolves an opaque token key to its user.
func (s *UserService) Authenticate(key string) (*db.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrTokenInvalid
	}

	var token db.AuthToken
	if err := s.db.Preload("User").Where("key = ?", key).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	return &token.User, nil
}

// Revoke deletes the presented token so it can no longer authenticate.
func (s *UserService) Revoke(key string) error {
	result := s.db.Unscoped().Where("key = ?", strings.TrimSpace(key)).Delete(&db.AuthToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// GetProfile loads a user with their profile attached.
func (s *UserService) GetProfile(userID uint) (*db.User, error) {
	var user db.User
	if err := s.db.Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the provided profile fields.
func (s *UserService) UpdateProfile(userID uint, input ProfileInput) (*db.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != "" && !strings.Contains(email, "@") {
			errs := FieldErrors{}
			errs.Add("email", "Enter a valid email address.")
			return nil, errs
		}
		user.Email = email
	}
	if input.DisplayName != nil {
		user.Profile.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Bio != nil {
		user.Profile.Bio = *input.Bio
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Save(&user.Profile).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetAvatar records the stored avatar location and its pixel dimensions.
func (s *UserService) SetAvatar(userID uint, url string, width, height int) (*db.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	user.Profile.AvatarURL = url
	user.Profile.AvatarWidth = width
	user.Profile.AvatarHeight = height
	if err := s.db.Save(&user.Profile).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func issueToken(tx *gorm.DB, userID uint) (string, error) {
	token := db.AuthToken{Key: uuid.NewString(), UserID: userID}
	if err := tx.Create(&token).Error; err != nil {
		return "", err
	}
	return token.Key, nil
}
