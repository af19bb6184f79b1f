package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// ListFiles 列出/检索文件，支持目录过滤、名称搜索、排序与分页.
func ListFiles(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var query types.ListFilesQuery
	if !bindQuery(c, &query) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), user, &query)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFile 返回文件详情与所在目录路径.
func GetFile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateFile 重命名和/或移动文件.
func UpdateFile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req types.UpdateFileRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.Update(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteFile 删除文件及其全部历史版本.
func DeleteFile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListFileVersions 返回文件的历史版本.
func ListFileVersions(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.ListVersions(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
