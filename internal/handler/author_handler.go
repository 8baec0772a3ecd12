package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/service"
)

type authorRequest struct {
	Name string `json:"name"`
}

// GetAuthors 获取作者列表，包含每位作者的书籍
func (a *API) GetAuthors(c *gin.Context) {
	authors, err := a.authors.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list authors")
		return
	}

	results := make([]gin.H, 0, len(authors))
	for _, author := range authors {
		results = append(results, authorJSON(author))
	}
	c.JSON(http.StatusOK, gin.H{"authors": results})
}

// GetAuthor 获取单个作者
func (a *API) GetAuthor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid author id")
		return
	}

	author, err := a.authors.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrAuthorNotFound) {
			respondError(c, http.StatusNotFound, "Author not found.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to load author")
		}
		return
	}

	c.JSON(http.StatusOK, authorJSON(*author))
}

// CreateAuthor 创建新作者
func (a *API) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if !bindJSON(c, &req) {
		return
	}

	author, err := a.authors.Create(req.Name)
	if err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			respondValidation(c, "Failed to create author", fieldErrs)
		} else {
			respondError(c, http.StatusInternalServerError, "failed to create author")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Author created successfully",
		"author":  authorJSON(*author),
	})
}

// UpdateAuthor 更新作者
func (a *API) UpdateAuthor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid author id")
		return
	}

	var req authorRequest
	if !bindJSON(c, &req) {
		return
	}

	author, err := a.authors.Update(id, req.Name)
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			respondValidation(c, "Failed to update author", fieldErrs)
		case errors.Is(err, service.ErrAuthorNotFound):
			respondError(c, http.StatusNotFound, "Author not found.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update author")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Author updated successfully",
		"author":  authorJSON(*author),
	})
}

// DeleteAuthor 删除作者及其全部书籍
func (a *API) DeleteAuthor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid author id")
		return
	}

	if err := a.authors.Delete(id); err != nil {
		if errors.Is(err, service.ErrAuthorNotFound) {
			respondError(c, http.StatusNotFound, "Author not found.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to delete author")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Author deleted successfully"})
}
