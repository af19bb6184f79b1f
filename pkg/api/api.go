// Package api 将全部业务路由注册到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/router"
)

// RegisterGroup 注册全部路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	router.RegisterRoutes(e)

	return e
}
