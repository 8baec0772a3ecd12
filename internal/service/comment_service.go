package service

import (
	"errors"

	"github.com/inkshelf/internal/db"
	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

// CommentService wraps comment related operations.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// ListForPost returns the comments of a post oldest first.
func (s *CommentService) ListForPost(postID uint) ([]db.Comment, error) {
	if err := s.postExists(postID); err != nil {
		return nil, err
	}

	var comments []db.Comment
	if err := s.db.
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Create attaches a comment by userID to the given post.
func (s *CommentService) Create(postID, userID uint, content string) (*db.Comment, error) {
	if err := s.postExists(postID); err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	cleaned := requireText(&content, "content", errs)
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	comment := db.Comment{PostID: postID, UserID: userID, Content: cleaned}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update rewrites the comment content. Only the owning user may update.
func (s *CommentService) Update(id, actorID uint, content string) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, ErrNotOwner
	}

	errs := FieldErrors{}
	cleaned := requireText(&content, "content", errs)
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	comment.Content = cleaned
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment and returns the deleted record so callers can
// invalidate anything keyed by its post. Only the owning user may delete.
func (s *CommentService) Delete(id, actorID uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, ErrNotOwner
	}

	if err := s.db.Unscoped().Delete(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) postExists(postID uint) error {
	var count int64
	if err := s.db.Model(&db.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}
