package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// BulkDeleteFiles 批量删除文件，逐条返回结果.
func BulkDeleteFiles(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req types.BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.BulkDelete(c.Request.Context(), user, &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// BulkMoveFiles 批量移动文件到目标文件夹，逐条返回结果.
func BulkMoveFiles(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req types.BulkMoveRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.BulkMove(c.Request.Context(), user, &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
