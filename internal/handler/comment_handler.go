package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/service"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments 获取文章的评论列表，按时间先后排序
func (a *API) GetComments(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := a.comments.ListForPost(postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "Post not found.")
		} else {
			respondError(c, http.StatusInternalServerError, "failed to list comments")
		}
		return
	}

	results := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		results = append(results, commentJSON(comment))
	}
	c.JSON(http.StatusOK, gin.H{"comments": results})
}

// CreateComment 在文章下创建评论
func (a *API) CreateComment(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	comment, err := a.comments.Create(postID, user.ID, req.Content)
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			respondValidation(c, "Failed to create comment", fieldErrs)
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "Post not found.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create comment")
		}
		return
	}

	_ = a.cache.Del(c.Request.Context(), postCacheKey(postID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": commentJSON(*comment),
	})
}

// UpdateComment 更新评论，仅作者本人可操作
func (a *API) UpdateComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	user := currentUser(c)
	comment, err := a.comments.Update(id, user.ID, req.Content)
	if err != nil {
		var fieldErrs service.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			respondValidation(c, "Failed to update comment", fieldErrs)
		case errors.Is(err, service.ErrCommentNotFound):
			respondError(c, http.StatusNotFound, "Comment not found.")
		case errors.Is(err, service.ErrNotOwner):
			respondError(c, http.StatusForbidden, "You do not have permission to modify this comment.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update comment")
		}
		return
	}

	_ = a.cache.Del(c.Request.Context(), postCacheKey(comment.PostID))
	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": commentJSON(*comment),
	})
}

// DeleteComment 删除评论，仅作者本人可操作
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	user := currentUser(c)
	comment, err := a.comments.Delete(id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			respondError(c, http.StatusNotFound, "Comment not found.")
		case errors.Is(err, service.ErrNotOwner):
			respondError(c, http.StatusForbidden, "You do not have permission to delete this comment.")
		default:
			respondError(c, http.StatusInternalServerError, "failed to delete comment")
		}
		return
	}

	_ = a.cache.Del(c.Request.Context(), postCacheKey(comment.PostID))
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
