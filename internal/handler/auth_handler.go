package handler

import (
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Register the supported avatar formats with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkshelf/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// Register 注册新用户并签发首个 API Token
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, key, err := a.users.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			respondValidation(c, "Failed to register user", fieldErrs)
		} else {
			respondError(c, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   key,
		"user":    userJSON(*user),
	})
}

// Login 校验用户名密码并签发新的 API Token
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, key, err := a.users.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid username or password.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to log in")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully",
		"token":   key,
		"user":    userJSON(*user),
	})
}

// Logout 撤销当前请求携带的 Token
func (a *API) Logout(c *gin.Context) {
	key, ok := tokenFromHeader(c.GetHeader("Authorization"))
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	if err := a.users.Revoke(key); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, http.StatusUnauthorized, "Invalid token.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to log out")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetProfile 获取当前用户的资料
func (a *API) GetProfile(c *gin.Context) {
	user := currentUser(c)

	loaded, err := a.users.GetProfile(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profileJSON(*loaded))
}

// UpdateProfile 更新当前用户的资料
func (a *API) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	updated, err := a.users.UpdateProfile(user.ID, service.ProfileInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			respondValidation(c, "Failed to update profile", fieldErrs)
		} else {
			respondError(c, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    profileJSON(*updated),
	})
}

// UploadAvatar 上传头像，校验图片格式并记录像素尺寸
func (a *API) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "avatar file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	config, format, err := image.DecodeConfig(src)
	src.Close()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unsupported image format")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}

	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	name := fmt.Sprintf("avatar-%s.%s", uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, name)); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	url := strings.TrimRight(a.uploadURL, "/") + "/" + name
	user := currentUser(c)
	updated, err := a.users.SetAvatar(user.ID, url, config.Width, config.Height)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Avatar updated successfully",
		"user":    profileJSON(*updated),
	})
}
