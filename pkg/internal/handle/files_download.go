package handle

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/log"
)

// DownloadFile 下载单个文件内容.
func DownloadFile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	rc, file, err := svc.Download(c.Request.Context(), user, c.Param("id"))
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
		// 响应头已发出，只能记录
		log.Logger().Warn().Err(err).Str("file_id", file.ID).Msg("stream download interrupted")
	}
}

// BulkDownloadFiles 把多个文件打包为 zip 流式返回.
func BulkDownloadFiles(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req types.BulkDownloadRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	archiveName := fmt.Sprintf("drivevault-%s.zip", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", attachmentDisposition(archiveName))
	c.Header("Content-Type", "application/zip")
	c.Status(http.StatusOK)

	if err := svc.BulkDownload(c.Request.Context(), user, &req, c.Writer); err != nil {
		// zip 头写出前的失败仍可返回结构化错误
		if !c.Writer.Written() {
			renderError(c, err)
			return
		}

		log.Logger().Warn().Err(err).Msg("stream archive interrupted")
	}
}

// attachmentDisposition 构造带非 ASCII 文件名支持的 Content-Disposition.
func attachmentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
