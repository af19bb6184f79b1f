package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
	"github.com/yeisme/drivevault/pkg/internal/model"
)

// RegisterFilesRoutes 注册文件操作相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		// 列表/检索；HEAD 返回聚合统计
		filesRoutes.GET("", handle.ListFiles)
		filesRoutes.HEAD("", handle.HeadFileStats)
		// multipart 上传，支持批量
		filesRoutes.POST("/upload", handle.UploadFiles)
		// 全盘搜索
		filesRoutes.GET("/search", handle.Search)

		// 批量文件操作
		batchGroup := filesRoutes.Group("/batch")
		{
			// 批量删除文件
			batchGroup.DELETE("", handle.BulkDeleteFiles)
			// 批量移动文件
			batchGroup.POST("/move", handle.BulkMoveFiles)
			// 批量下载（zip 打包）
			batchGroup.POST("/download", handle.BulkDownloadFiles)
		}

		// 单个文件操作
		singleGroup := filesRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.GetFile)
			singleGroup.PATCH("", handle.UpdateFile)
			singleGroup.DELETE("", handle.DeleteFile)
			singleGroup.GET("/download", handle.DownloadFile)

			// 文件版本管理
			singleGroup.GET("/versions", handle.ListFileVersions)

			// 文件的分享与公开链接
			shareGroup := singleGroup.Group("/share")
			{
				shareGroup.GET("", handle.GetShareState(model.ResourceFile))
				shareGroup.POST("", handle.GrantShare(model.ResourceFile))
				shareGroup.DELETE("/:granteeId", handle.RevokeShare(model.ResourceFile))
			}

			linkGroup := singleGroup.Group("/link")
			{
				linkGroup.POST("", handle.CreateShareLink(model.ResourceFile))
				linkGroup.DELETE("", handle.DeleteShareLink(model.ResourceFile))
			}
		}
	}
}
