package db

import "gorm.io/gorm"

// Book 定义了书籍模型
// A title may repeat across authors but not within one author's shelf.
type Book struct {
	gorm.Model
	Title           string `gorm:"not null;uniqueIndex:idx_books_title_author"`
	PublicationYear int    `gorm:"index"`
	AuthorID        uint   `gorm:"not null;index;uniqueIndex:idx_books_title_author"`
	Author          Author
}
