package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/db"
	"github.com/inkshelf/internal/service"
)

func bookJSON(book db.Book) gin.H {
	return gin.H{
		"id":               book.ID,
		"title":            book.Title,
		"publication_year": book.PublicationYear,
		"author":           book.AuthorID,
	}
}

func authorJSON(author db.Author) gin.H {
	books := make([]gin.H, 0, len(author.Books))
	for _, book := range author.Books {
		books = append(books, bookJSON(book))
	}
	return gin.H{
		"id":    author.ID,
		"name":  author.Name,
		"books": books,
	}
}

func postJSON(post db.Post) gin.H {
	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, tag.Name)
	}
	return gin.H{
		"id":              post.ID,
		"title":           post.Title,
		"author":          post.UserID,
		"author_username": post.User.Username,
		"published_at":    post.PublishedAt,
		"tags":            tags,
	}
}

func postDetailJSON(post db.Post, comments []db.Comment) gin.H {
	view := postJSON(post)
	view["content"] = post.Content
	view["content_html"] = service.RenderMarkdown(post.Content)

	commentViews := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		commentViews = append(commentViews, commentJSON(comment))
	}
	view["comments"] = commentViews
	return view
}

func commentJSON(comment db.Comment) gin.H {
	return gin.H{
		"id":              comment.ID,
		"post":            comment.PostID,
		"author":          comment.UserID,
		"author_username": comment.User.Username,
		"content":         comment.Content,
		"created_at":      comment.CreatedAt,
		"updated_at":      comment.UpdatedAt,
	}
}

func userJSON(user db.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
}

func profileJSON(user db.User) gin.H {
	view := userJSON(user)
	view["profile"] = gin.H{
		"display_name":  user.Profile.DisplayName,
		"bio":           user.Profile.Bio,
		"avatar_url":    user.Profile.AvatarURL,
		"avatar_width":  user.Profile.AvatarWidth,
		"avatar_height": user.Profile.AvatarHeight,
	}
	return view
}
