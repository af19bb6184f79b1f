package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// Me 返回当前认证用户.
func Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	c.JSON(http.StatusOK, types.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	})
}

// ListUsers 列出用户.
func ListUsers(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), 0)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SearchUsers 按邮箱/名称搜索用户，用于分享时选择受让人.
func SearchUsers(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var query types.SearchUsersQuery
	if !bindQuery(c, &query) {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Search(c.Request.Context(), &query)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
