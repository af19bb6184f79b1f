package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
	"github.com/yeisme/drivevault/pkg/internal/model"
)

// RegisterDriveRoutes 注册根目录（My Drive）路由.
func RegisterDriveRoutes(g *gin.RouterGroup) {
	g.GET("/drive", handle.ListDriveRoot)
}

// RegisterFoldersRoutes 注册文件夹相关路由.
func RegisterFoldersRoutes(g *gin.RouterGroup) {
	foldersRoutes := g.Group("/folders")
	{
		// 文件夹列表与创建
		foldersRoutes.GET("", handle.ListFolders)
		foldersRoutes.POST("", handle.CreateFolder)

		singleGroup := foldersRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetFolder)
			singleGroup.PATCH("", handle.RenameFolder)
			singleGroup.DELETE("", handle.DeleteFolder)
			// 目录内容与面包屑
			singleGroup.GET("/contents", handle.ListFolderContents)
			singleGroup.GET("/path", handle.GetFolderPath)

			// 文件夹的分享与公开链接
			shareGroup := singleGroup.Group("/share")
			{
				shareGroup.GET("", handle.GetShareState(model.ResourceFolder))
				shareGroup.POST("", handle.GrantShare(model.ResourceFolder))
				shareGroup.DELETE("/:granteeId", handle.RevokeShare(model.ResourceFolder))
			}

			linkGroup := singleGroup.Group("/link")
			{
				linkGroup.POST("", handle.CreateShareLink(model.ResourceFolder))
				linkGroup.DELETE("", handle.DeleteShareLink(model.ResourceFolder))
			}
		}
	}
}
