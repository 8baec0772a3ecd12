package service

import (
	"gorm.io/gorm"
)

// TagService wraps tag related operations. Tags are created on demand when
// posts reference them, so the service only exposes reads.
type TagService struct {
	db *gorm.DB
}

// TagUsage 描述标签的使用次数
type TagUsage struct {
	ID    uint
	Name  string
	Count int64
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns every tag alphabetically with the number of posts using it.
func (s *TagService) List() ([]TagUsage, error) {
	var rows []struct {
		ID    uint
		Name  string
		Count int64
	}

	query := s.db.Table("tags").
		Select("tags.id, tags.name, COUNT(post_tags.post_id) AS count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("tags.name asc").
		Order("tags.id asc")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	usages := make([]TagUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, TagUsage{ID: row.ID, Name: row.Name, Count: row.Count})
	}
	return usages, nil
}
