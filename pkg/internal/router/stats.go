package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterStatsRoutes 注册存储统计路由.
func RegisterStatsRoutes(g *gin.RouterGroup) {
	g.GET("/stats", handle.GetStorageStats)
}
