package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// CreateFolder 在指定父级（缺省为根目录）下创建文件夹.
func CreateFolder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req types.CreateFolderRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Create(c.Request.Context(), user, &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetFolder 返回文件夹详情与面包屑路径.
func GetFolder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListFolders 列出文件夹：全部（all=true）或某个父级的直接子级.
func ListFolders(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var query types.ListFoldersQuery
	if !bindQuery(c, &query) {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), user, &query)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListFolderContents 列出文件夹的直接子项.
func ListFolderContents(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.ListContents(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListDriveRoot 列出根目录的直接子项.
func ListDriveRoot(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.ListContents(c.Request.Context(), user, "")
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RenameFolder 重命名文件夹.
func RenameFolder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req types.RenameFolderRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	resp, err := svc.Rename(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteFolder 删除空文件夹；非空时返回冲突.
func DeleteFolder(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetFolderPath 返回文件夹的面包屑路径.
func GetFolderPath(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewFolderService(c.Request.Context())

	path, err := svc.Path(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path})
}
