package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// GzipMiddleware 响应压缩；文件下载与归档流已压缩或体积敏感，按路径前缀跳过.
func GzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{
			`^/api/v1/files/.*/download$`,
			`^/shared/.*/download$`,
		}),
	)
}
