package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
)

// GetStorageStats 返回当前用户的存储统计.
func GetStorageStats(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Stats(c.Request.Context(), user.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HeadFileStats 以响应头形式返回文件总数与总字节数.
func HeadFileStats(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Stats(c.Request.Context(), user.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.Header("X-Total-Files", strconv.FormatInt(resp.FileCount, 10))
	c.Header("X-Total-Size", strconv.FormatInt(resp.TotalBytes, 10))
	c.Status(http.StatusOK)
}
