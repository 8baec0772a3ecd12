package service

import (
	"errors"
	"strings"
	"time"

	"github.com/inkshelf/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound = errors.New("post not found")
	// ErrNotOwner is returned when the acting user tries to mutate a
	// resource owned by someone else.
	ErrNotOwner = errors.New("resource is owned by another user")
)

// PostService wraps post related operations.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating or updating a post.
// Nil pointers mean "not provided"; a nil Tags leaves associations alone
// while an empty slice clears them.
type PostInput struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// PostFilter describes the query surface of the post list endpoint.
type PostFilter struct {
	TagName  string
	AuthorID *uint
	Search   string
	Ordering []string
	Page     int
	PageSize int
}

// PostListResult aggregates one page of posts and the total match count.
type PostListResult struct {
	Posts    []db.Post
	Total    int64
	Page     int
	PageSize int
}

var postOrderFields = map[string]string{
	"title":        "posts.title",
	"published_at": "posts.published_at",
	"id":           "posts.id",
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// List returns published posts newest first, optionally narrowed by tag,
// author and a case-insensitive search across title, content and tag names.
// Tag conditions use EXISTS subqueries so multi-tag posts never produce
// duplicate rows.
func (s *PostService) List(filter PostFilter) (PostListResult, error) {
	query := s.db.Model(&db.Post{})

	if tag := strings.TrimSpace(filter.TagName); tag != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id"+
				" WHERE post_tags.post_id = posts.id AND LOWER(tags.name) = LOWER(?))", tag)
	}
	if filter.AuthorID != nil {
		query = query.Where("posts.user_id = ?", *filter.AuthorID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := containsPattern(term)
		query = query.Where(
			`LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\'`+
				" OR EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id"+
				` WHERE post_tags.post_id = posts.id AND LOWER(tags.name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return PostListResult{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	clauses := orderClauses(filter.Ordering, postOrderFields, []string{"posts.published_at desc"})
	for _, clause := range clauses {
		query = query.Order(clause)
	}

	var posts []db.Post
	if err := query.
		Preload("Tags").
		Preload("User").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		return PostListResult{}, err
	}

	return PostListResult{Posts: posts, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get fetches a post by id with tags and author preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Tags").Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create persists a post for userID and associates tags, creating missing
// tags on the fly, in one transaction.
func (s *PostService) Create(userID uint, input PostInput) (*db.Post, error) {
	errs := FieldErrors{}
	title := requireText(input.Title, "title", errs)
	content := requireText(input.Content, "content", errs)
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	post := db.Post{
		Title:       title,
		Content:     content,
		UserID:      userID,
		PublishedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if input.Tags == nil {
			return nil
		}
		tags, err := ensureTags(tx, *input.Tags)
		if err != nil {
			return err
		}
		return tx.Model(&post).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(post.ID)
}

// Update applies a full (PUT) or partial (PATCH) update. Only the owning
// user may update a post.
func (s *PostService) Update(id, actorID uint, input PostInput, partial bool) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != actorID {
		return nil, ErrNotOwner
	}

	errs := FieldErrors{}
	if !partial {
		post.Title = requireText(input.Title, "title", errs)
		post.Content = requireText(input.Content, "content", errs)
	} else {
		if input.Title != nil {
			post.Title = requireText(input.Title, "title", errs)
		}
		if input.Content != nil {
			post.Content = requireText(input.Content, "content", errs)
		}
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		if input.Tags == nil {
			return nil
		}
		tags, err := ensureTags(tx, *input.Tags)
		if err != nil {
			return err
		}
		return tx.Model(&post).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(post.ID)
}

// Delete removes a post together with its comments and tag associations.
// Only the owning user may delete a post.
func (s *PostService) Delete(id, actorID uint) error {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.UserID != actorID {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("post_id = ?", post.ID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&post).Error
	})
}

func requireText(value *string, field string, errs FieldErrors) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		errs.Add(field, "This field is required.")
		return ""
	}
	return strings.TrimSpace(*value)
}

// ensureTags resolves tag names to records, creating any that do not exist
// yet. Names are trimmed and deduplicated case-insensitively.
func ensureTags(tx *gorm.DB, names []string) ([]db.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]db.Tag, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		var tag db.Tag
		err := tx.Where("LOWER(name) = ?", key).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = db.Tag{Name: name}
			err = tx.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
