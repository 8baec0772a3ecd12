package handler

import (
	"github.com/inkshelf/internal/cache"
	"github.com/inkshelf/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	authors   *service.AuthorService
	books     *service.BookService
	posts     *service.PostService
	comments  *service.CommentService
	tags      *service.TagService
	users     *service.UserService
	cache     *cache.Cache
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services. store may be nil
// when caching is not configured.
func NewAPI(gdb *gorm.DB, store *cache.Cache, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		authors:   service.NewAuthorService(gdb),
		books:     service.NewBookService(gdb),
		posts:     service.NewPostService(gdb),
		comments:  service.NewCommentService(gdb),
		tags:      service.NewTagService(gdb),
		users:     service.NewUserService(gdb),
		cache:     store,
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
