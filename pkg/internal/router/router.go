// Package router 管理路由配置，将路径和处理器绑定到 gin 引擎.
// 处理器实现由 pkg/internal/handle 提供.
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册全部业务路由.
// 认证后的 API 挂在 /api/v1 下；/shared 为匿名访问的公开链接入口.
func RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api/v1")
	{
		RegisterDriveRoutes(api)
		RegisterFoldersRoutes(api)
		RegisterFilesRoutes(api)
		RegisterSharesRoutes(api)
		RegisterUsersRoutes(api)
		RegisterStatsRoutes(api)
		RegisterHealthCheckRoute(api)
		RegisterSchedulerRoutes(api)
	}

	RegisterPublicLinkRoutes(engine)
}
