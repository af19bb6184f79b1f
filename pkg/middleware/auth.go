package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/log"
)

// AuthMiddleware 基于 oauth2-proxy 注入的请求头做统一身份认证校验。
//   - 优先读取 X-Auth-Request-Email 或 X-Forwarded-Email
//   - 首次出现的身份在用户表中按邮箱落位（upsert）
//   - 支持通过配置跳过某些路径（如 /metrics, /shared）
//   - 开发模式可允许 query user 兜底（由 configs.auth.dev_allow_query 控制）.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
		if email == "" {
			email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
		}

		externalID := strings.TrimSpace(c.GetHeader("X-Auth-Request-User"))
		name := strings.TrimSpace(c.GetHeader("X-Auth-Request-Preferred-Username"))

		if email == "" && conf.DevAllowQuery {
			email = strings.TrimSpace(c.Query("user"))
		}

		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := service.NewUserService(c.Request.Context()).
			Resolve(c.Request.Context(), externalID, email, name)
		if err != nil {
			log.Logger().Error().Err(err).Str("email", email).Msg("resolve user failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "identity resolution failed"})

			return
		}

		c.Request = c.Request.WithContext(ctxPkg.WithCurrentUser(c.Request.Context(), user))
		c.Next()
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
