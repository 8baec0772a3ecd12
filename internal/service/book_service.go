package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkshelf/internal/db"
	"gorm.io/gorm"
)

var ErrBookNotFound = errors.New("book not found")

// BookService wraps book related operations.
type BookService struct {
	db *gorm.DB
}

// BookInput represents fields accepted when creating or updating a book.
// Nil pointers mean "not provided", which partial updates leave untouched.
type BookInput struct {
	Title           *string
	PublicationYear *int
	AuthorID        *uint
}

// BookFilter describes the query surface of the book list endpoint.
type BookFilter struct {
	Title         string
	TitleContains string
	AuthorID      *uint
	Year          *int
	YearFrom      *int
	YearTo        *int
	Search        string
	Ordering      []string
	Page          int
	PageSize      int
}

// BookListResult aggregates one page of books and the total match count.
type BookListResult struct {
	Books    []db.Book
	Total    int64
	Page     int
	PageSize int
}

var bookOrderFields = map[string]string{
	"title":            "books.title",
	"publication_year": "books.publication_year",
	"author":           "books.author_id",
	"id":               "books.id",
}

// NewBookService creates a BookService instance.
func NewBookService(gdb *gorm.DB) *BookService {
	return &BookService{db: gdb}
}

// List applies exact, range and substring filters plus search and ordering,
// then returns the requested page. Range bounds are inclusive and search is
// case-insensitive across title and author name.
func (s *BookService) List(filter BookFilter) (BookListResult, error) {
	query := s.db.Model(&db.Book{})

	if title := strings.TrimSpace(filter.Title); title != "" {
		query = query.Where("books.title = ?", title)
	}
	if fragment := strings.TrimSpace(filter.TitleContains); fragment != "" {
		query = query.Where(`LOWER(books.title) LIKE ? ESCAPE '\'`, containsPattern(fragment))
	}
	if filter.AuthorID != nil {
		query = query.Where("books.author_id = ?", *filter.AuthorID)
	}
	if filter.Year != nil {
		query = query.Where("books.publication_year = ?", *filter.Year)
	}
	if filter.YearFrom != nil {
		query = query.Where("books.publication_year >= ?", *filter.YearFrom)
	}
	if filter.YearTo != nil {
		query = query.Where("books.publication_year <= ?", *filter.YearTo)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := containsPattern(term)
		query = query.
			Joins("LEFT JOIN authors ON authors.id = books.author_id").
			Where(`LOWER(books.title) LIKE ? ESCAPE '\' OR LOWER(authors.name) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return BookListResult{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	clauses := orderClauses(filter.Ordering, bookOrderFields, []string{
		"books.publication_year desc",
		"books.title asc",
	})
	for _, clause := range clauses {
		query = query.Order(clause)
	}

	// The author join (when searching) would otherwise leak authors.*
	// columns into the scan.
	var books []db.Book
	if err := query.
		Select("books.*").
		Preload("Author").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&books).Error; err != nil {
		return BookListResult{}, err
	}

	return BookListResult{Books: books, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get fetches a book by id with its author preloaded.
func (s *BookService) Get(id uint) (*db.Book, error) {
	var book db.Book
	if err := s.db.Preload("Author").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Create validates and persists a new book.
func (s *BookService) Create(input BookInput) (*db.Book, error) {
	errs := FieldErrors{}

	title := s.requireTitle(input, errs)
	s.requireYear(input, errs)
	if err := s.requireAuthor(input, errs); err != nil {
		return nil, err
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(title, *input.AuthorID, 0); err != nil {
		return nil, err
	}

	book := db.Book{
		Title:           title,
		PublicationYear: *input.PublicationYear,
		AuthorID:        *input.AuthorID,
	}
	if err := s.db.Create(&book).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Author").First(&book, book.ID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Update applies a full (PUT) or partial (PATCH) update to an existing book.
func (s *BookService) Update(id uint, input BookInput, partial bool) (*db.Book, error) {
	var book db.Book
	if err := s.db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	errs := FieldErrors{}
	title := book.Title
	year := book.PublicationYear
	authorID := book.AuthorID

	if !partial {
		title = s.requireTitle(input, errs)
		s.requireYear(input, errs)
		if err := s.requireAuthor(input, errs); err != nil {
			return nil, err
		}
		if err := errs.orNil(); err != nil {
			return nil, err
		}
		year = *input.PublicationYear
		authorID = *input.AuthorID
	} else {
		if input.Title != nil {
			title = strings.TrimSpace(*input.Title)
			if title == "" {
				errs.Add("title", "This field may not be blank.")
			}
		}
		if input.PublicationYear != nil {
			validatePublicationYear(*input.PublicationYear, errs)
			year = *input.PublicationYear
		}
		if input.AuthorID != nil {
			exists, err := s.authorExists(*input.AuthorID)
			if err != nil {
				return nil, err
			}
			if !exists {
				errs.Add("author", "Author with the given id does not exist.")
			}
			authorID = *input.AuthorID
		}
		if err := errs.orNil(); err != nil {
			return nil, err
		}
	}

	if err := s.checkDuplicate(title, authorID, book.ID); err != nil {
		return nil, err
	}

	book.Title = title
	book.PublicationYear = year
	book.AuthorID = authorID
	if err := s.db.Save(&book).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Author").First(&book, book.ID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Delete removes a book permanently and returns the deleted record so the
// handler can echo it back.
func (s *BookService) Delete(id uint) (*db.Book, error) {
	var book db.Book
	if err := s.db.Preload("Author").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if err := s.db.Unscoped().Delete(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookService) requireTitle(input BookInput, errs FieldErrors) string {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		errs.Add("title", "This field is required.")
		return ""
	}
	return strings.TrimSpace(*input.Title)
}

func (s *BookService) requireYear(input BookInput, errs FieldErrors) {
	if input.PublicationYear == nil {
		errs.Add("publication_year", "This field is required.")
		return
	}
	validatePublicationYear(*input.PublicationYear, errs)
}

func (s *BookService) requireAuthor(input BookInput, errs FieldErrors) error {
	if input.AuthorID == nil {
		errs.Add("author", "This field is required.")
		return nil
	}
	exists, err := s.authorExists(*input.AuthorID)
	if err != nil {
		return err
	}
	if !exists {
		errs.Add("author", "Author with the given id does not exist.")
	}
	return nil
}

func (s *BookService) authorExists(id uint) (bool, error) {
	var count int64
	if err := s.db.Model(&db.Author{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *BookService) checkDuplicate(title string, authorID, excludeID uint) error {
	var count int64
	query := s.db.Model(&db.Book{}).Where("title = ? AND author_id = ?", title, authorID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs := FieldErrors{}
		errs.Add("title", "This author already has a book with this title.")
		return errs
	}
	return nil
}

// validatePublicationYear rejects years in the future and years at or
// before 1000.
func validatePublicationYear(year int, errs FieldErrors) {
	currentYear := time.Now().Year()
	if year > currentYear {
		errs.Add("publication_year", fmt.Sprintf("Publication year cannot be in the future. Current year is %d.", currentYear))
		return
	}
	if year <= 1000 {
		errs.Add("publication_year", "Publication year must be after year 1000.")
	}
}
