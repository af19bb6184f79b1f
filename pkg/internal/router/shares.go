package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterSharesRoutes 注册"共享给我"相关路由.
// 资源维度的分享端点挂在 /files/:id 与 /folders/:id 之下.
func RegisterSharesRoutes(g *gin.RouterGroup) {
	g.GET("/shared-with-me", handle.SharedWithMe)
}

// RegisterPublicLinkRoutes 注册匿名访问的公开链接路由.
// 不经过认证中间件的校验（配置中默认列入 skip_paths）.
func RegisterPublicLinkRoutes(engine *gin.Engine) {
	sharedRoutes := engine.Group("/shared")
	{
		sharedRoutes.GET("/:token", handle.ResolveSharedLink)
		sharedRoutes.GET("/:token/download", handle.DownloadSharedLink)
	}
}
