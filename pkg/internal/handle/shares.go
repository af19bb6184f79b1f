package handle

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/log"
)

// shareResource 从路由推断分享目标的资源类别与 ID.
// 文件与文件夹的分享端点挂在各自的资源组下，rt 由注册路由时固定.
func shareResource(c *gin.Context, rt model.ResourceType) (model.ResourceType, string) {
	return rt, c.Param("id")
}

// GrantShare 把资源授予指定用户.
func GrantShare(rt model.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			return
		}

		var req types.GrantShareRequest
		if !bindJSON(c, &req) {
			return
		}

		resourceType, resourceID := shareResource(c, rt)
		svc := service.NewShareService(c.Request.Context())

		// 批量授予整批原子生效
		if len(req.Users) > 0 {
			shares, err := svc.GrantMany(c.Request.Context(), user, resourceType, resourceID, &req)
			if err != nil {
				renderError(c, err)
				return
			}

			c.JSON(http.StatusCreated, gin.H{"shares": shares})

			return
		}

		resp, err := svc.Grant(c.Request.Context(), user, resourceType, resourceID, &req)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// RevokeShare 撤销对某用户的授权.
func RevokeShare(rt model.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			return
		}

		resourceType, resourceID := shareResource(c, rt)
		svc := service.NewShareService(c.Request.Context())

		if err := svc.Revoke(c.Request.Context(), user, resourceType, resourceID, c.Param("granteeId")); err != nil {
			renderError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// GetShareState 返回资源的分享状态（定向分享 + 公开链接）.
func GetShareState(rt model.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			return
		}

		resourceType, resourceID := shareResource(c, rt)
		svc := service.NewShareService(c.Request.Context())

		resp, err := svc.State(c.Request.Context(), user, resourceType, resourceID)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// CreateShareLink 为资源创建（或轮换）公开链接.
func CreateShareLink(rt model.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			return
		}

		var req types.CreateLinkRequest
		if c.Request.ContentLength > 0 {
			if !bindJSON(c, &req) {
				return
			}
		}

		resourceType, resourceID := shareResource(c, rt)
		svc := service.NewShareService(c.Request.Context())

		resp, err := svc.CreateLink(c.Request.Context(), user, resourceType, resourceID, &req)
		if err != nil {
			renderError(c, err)
			return
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// DeleteShareLink 删除资源的公开链接.
func DeleteShareLink(rt model.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			return
		}

		resourceType, resourceID := shareResource(c, rt)
		svc := service.NewShareService(c.Request.Context())

		if err := svc.DeleteLink(c.Request.Context(), user, resourceType, resourceID); err != nil {
			renderError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// SharedWithMe 列出分享给当前用户的资源.
func SharedWithMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	items, err := svc.SharedWithMe(c.Request.Context(), user, c.Query("type"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// ResolveSharedLink 匿名访问公开链接，返回资源快照.
func ResolveSharedLink(c *gin.Context) {
	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.ResolveLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadSharedLink 匿名下载公开链接指向的文件内容.
func DownloadSharedLink(c *gin.Context) {
	svc := service.NewShareService(c.Request.Context())

	rc, file, err := svc.OpenLinkFile(c.Request.Context(), c.Param("token"))
	if err != nil {
		renderError(c, err)
		return
	}
	defer rc.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", attachmentDisposition(file.Name))
	c.Header("Content-Type", contentType)

	if file.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", file.Size))
	}

	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Logger().Warn().Err(err).Str("file_id", file.ID).Msg("stream shared download interrupted")
	}
}
