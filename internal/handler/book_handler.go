package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/service"
)

type bookRequest struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	Author          *uint   `json:"author"`
}

func (r bookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:           r.Title,
		PublicationYear: r.PublicationYear,
		AuthorID:        r.Author,
	}
}

// GetBooks 获取书籍列表，支持过滤、搜索、排序与分页
func (a *API) GetBooks(c *gin.Context) {
	filter := service.BookFilter{
		Title:         c.Query("title"),
		TitleContains: c.Query("title__icontains"),
		Search:        c.Query("search"),
		Ordering:      orderingParam(c),
	}

	var err error
	if filter.AuthorID, err = queryUint(c, "author"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.Year, err = queryInt(c, "publication_year"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.YearFrom, err = queryInt(c, "publication_year__gte"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if filter.YearTo, err = queryInt(c, "publication_year__lte"); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := queryInt(c, "page")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := queryInt(c, "page_size")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if page != nil {
		filter.Page = *page
	}
	if pageSize != nil {
		filter.PageSize = *pageSize
	}

	result, err := a.books.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list books")
		return
	}

	results := make([]gin.H, 0, len(result.Books))
	for _, book := range result.Books {
		results = append(results, bookJSON(book))
	}
	c.JSON(http.StatusOK, paginated(c, result.Total, result.Page, result.PageSize, results))
}

// GetBook 获取单本书籍
func (a *API) GetBook(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := a.books.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Book not found.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to load book")
		}
		return
	}

	c.JSON(http.StatusOK, bookJSON(*book))
}

// CreateBook 创建新书籍
func (a *API) CreateBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := a.books.Create(req.toInput())
	if err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			respondValidation(c, "Failed to create book", fieldErrs)
		} else {
			respondError(c, http.StatusInternalServerError, "failed to create book")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"book":    bookJSON(*book),
	})
}

// UpdateBook 更新书籍，PUT 为全量更新，PATCH 为部分更新
func (a *API) UpdateBook(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid book id")
		return
	}

	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	partial := c.Request.Method == http.MethodPatch
	book, err := a.books.Update(id, req.toInput(), partial)
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			respondValidation(c, "Failed to update book", fieldErrs)
		case errors.Is(err, service.ErrBookNotFound):
			respondError(c, http.StatusNotFound, "Book not found.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update book")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Book updated successfully",
		"book":    bookJSON(*book),
	})
}

// DeleteBook 删除书籍
func (a *API) DeleteBook(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := a.books.Delete(id)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			respondError(c, http.StatusNotFound, "Book not found.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to delete book")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Book deleted successfully",
		"deleted_book": bookJSON(*book),
	})
}
