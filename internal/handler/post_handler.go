package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/service"
)

type postRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

func (r postRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:   r.Title,
		Content: r.Content,
		Tags:    r.Tags,
	}
}

func postCacheKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// GetPosts 获取文章列表，支持按标签、作者过滤以及搜索、排序、分页
func (a *API) GetPosts(c *gin.Context) {
	filter := service.PostFilter{
		TagName:  c.Query("tag"),
		Search:   c.Query("search"),
		Ordering: orderingParam(c),
	}

	var err error
	if filter.AuthorID, err = queryUint(c, "author"); err != nil {
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

	result, err := a.posts.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list posts")
		return
	}

	results := make([]gin.H, 0, len(result.Posts))
	for _, post := range result.Posts {
		results = append(results, postJSON(post))
	}
	c.JSON(http.StatusOK, paginated(c, result.Total, result.Page, result.PageSize, results))
}

// GetPost 获取文章详情，包含渲染后的内容与按时间排序的评论
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	ctx := c.Request.Context()
	var cached gin.H
	if found, err := a.cache.GetJSON(ctx, postCacheKey(id), &cached); err == nil && found {
		c.JSON(http.StatusOK, cached)
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "Post not found.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to load post")
		}
		return
	}

	comments, err := a.comments.ListForPost(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load comments")
		return
	}

	view := postDetailJSON(*post, comments)
	_ = a.cache.SetJSON(ctx, postCacheKey(id), view)
	c.JSON(http.StatusOK, view)
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	post, err := a.posts.Create(user.ID, req.toInput())
	if err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			respondValidation(c, "Failed to create post", fieldErrs)
		} else {
			respondError(c, http.StatusInternalServerError, "failed to create post")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    postJSON(*post),
	})
}

// UpdatePost 更新文章，仅作者本人可操作
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req postRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	partial := c.Request.Method == http.MethodPatch
	post, err := a.posts.Update(id, user.ID, req.toInput(), partial)
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			respondValidation(c, "Failed to update post", fieldErrs)
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "Post not found.")
		case errors.Is(err, service.ErrNotOwner):
			respondError(c, http.StatusForbidden, "You do not have permission to modify this post.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update post")
		}
		return
	}

	_ = a.cache.Del(c.Request.Context(), postCacheKey(id))
	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"post":    postJSON(*post),
	})
}

// DeletePost 删除文章及其评论，仅作者本人可操作
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	user := currentUser(c)
	if err := a.posts.Delete(id, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "Post not found.")
		case errors.Is(err, service.ErrNotOwner):
			respondError(c, http.StatusForbidden, "You do not have permission to delete this post.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to delete post")
		}
		return
	}

	_ = a.cache.Del(c.Request.Context(), postCacheKey(id))
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
