package service

import (
	"errors"
	"strings"

	"github.com/inkshelf/internal/db"
	"gorm.io/gorm"
)

var ErrAuthorNotFound = errors.New("author not found")

// AuthorService wraps author related operations.
type AuthorService struct {
	db *gorm.DB
}

// NewAuthorService creates an AuthorService instance.
func NewAuthorService(gdb *gorm.DB) *AuthorService {
	return &AuthorService{db: gdb}
}

// List returns all authors alphabetically with their books preloaded.
func (s *AuthorService) List() ([]db.Author, error) {
	var authors []db.Author
	if err := s.db.Preload("Books").Order("name asc").Order("id asc").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

// Get fetches an author by id with books preloaded.
func (s *AuthorService) Get(id uint) (*db.Author, error) {
	var author db.Author
	if err := s.db.Preload("Books").First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// Create persists a new author after validating the name.
func (s *AuthorService) Create(name string) (*db.Author, error) {
	cleaned, err := validateAuthorName(name)
	if err != nil {
		return nil, err
	}

	author := db.Author{Name: cleaned}
	if err := s.db.Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// Update renames an existing author.
func (s *AuthorService) Update(id uint, name string) (*db.Author, error) {
	cleaned, err := validateAuthorName(name)
	if err != nil {
		return nil, err
	}

	var author db.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	author.Name = cleaned
	if err := s.db.Save(&author).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Books").First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// Delete removes an author together with their books. Books reference the
// author with cascade semantics, so they cannot outlive it.
func (s *AuthorService) Delete(id uint) error {
	var author db.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuthorNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("author_id = ?", id).Delete(&db.Book{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&author).Error
	})
}

func validateAuthorName(name string) (string, error) {
	cleaned := strings.TrimSpace(name)
	errs := FieldErrors{}
	if cleaned == "" {
		errs.Add("name", "Author name cannot be empty.")
	} else if len(cleaned) < 2 {
		errs.Add("name", "Author name must be at least 2 characters long.")
	}
	if err := errs.orNil(); err != nil {
		return "", err
	}
	return cleaned, nil
}
