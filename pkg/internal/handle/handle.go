// Package handle 提供请求处理器的实现，用于处理HTTP请求.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/log"
)

func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Not Implemented"})
}

// currentUser 取认证中间件解析好的请求用户；缺失时响应 401 并返回 nil.
func currentUser(c *gin.Context) *model.User {
	user := ctxPkg.GetCurrentUser(c.Request.Context())
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}

	return user
}

// renderError 按错误类别映射 HTTP 状态码并输出统一的错误结构.
func renderError(c *gin.Context, err error) {
	status := errdefs.Status(err)
	if status >= http.StatusInternalServerError {
		log.Logger().Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON 绑定 JSON 请求体，失败时响应 400.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Logger().Warn().Err(err).Msg("invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return false
	}

	return true
}

// bindQuery 绑定查询参数，失败时响应 400.
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		log.Logger().Warn().Err(err).Msg("invalid query")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return false
	}

	return true
}
