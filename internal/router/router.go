package router

import (
	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.Default()

	// 头像等上传文件的静态服务
	r.Static(uploadURLPath, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 公开的只读接口
	public := r.Group("/api")
	{
		public.GET("/books/", api.GetBooks)
		public.GET("/books/:id/", api.GetBook)

		public.GET("/authors/", api.GetAuthors)
		public.GET("/authors/:id/", api.GetAuthor)

		public.GET("/posts/", api.GetPosts)
		public.GET("/posts/:id/", api.GetPost)
		public.GET("/posts/:id/comments/", api.GetComments)

		public.GET("/tags/", api.GetTags)

		public.POST("/auth/register/", api.Register)
		public.POST("/auth/login/", api.Login)
	}

	// 需要 Token 认证的写接口
	auth := r.Group("/api")
	auth.Use(api.TokenRequired())
	{
		auth.POST("/books/create/", api.CreateBook)
		auth.PUT("/books/:id/update/", api.UpdateBook)
		auth.PATCH("/books/:id/update/", api.UpdateBook)
		auth.DELETE("/books/:id/delete/", api.DeleteBook)

		auth.POST("/authors/create/", api.CreateAuthor)
		auth.PUT("/authors/:id/update/", api.UpdateAuthor)
		auth.DELETE("/authors/:id/delete/", api.DeleteAuthor)

		auth.POST("/posts/create/", api.CreatePost)
		auth.PUT("/posts/:id/update/", api.UpdatePost)
		auth.PATCH("/posts/:id/update/", api.UpdatePost)
		auth.DELETE("/posts/:id/delete/", api.DeletePost)

		auth.POST("/posts/:id/comments/create/", api.CreateComment)
		auth.PUT("/comments/:id/update/", api.UpdateComment)
		auth.DELETE("/comments/:id/delete/", api.DeleteComment)

		auth.POST("/auth/logout/", api.Logout)
		auth.GET("/auth/profile/", api.GetProfile)
		auth.PUT("/auth/profile/", api.UpdateProfile)
		auth.POST("/auth/profile/avatar/", api.UploadAvatar)
	}

	return r
}
