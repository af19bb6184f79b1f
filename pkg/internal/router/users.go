package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterUsersRoutes 注册用户相关路由.
func RegisterUsersRoutes(g *gin.RouterGroup) {
	usersRoutes := g.Group("/users")
	{
		usersRoutes.GET("", handle.ListUsers)
		usersRoutes.GET("/me", handle.Me)
		usersRoutes.GET("/search", handle.SearchUsers)
	}
}
