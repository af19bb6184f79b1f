package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// Search 全盘名称搜索，结果带面包屑路径.
func Search(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var query types.SearchQuery
	if !bindQuery(c, &query) {
		return
	}

	svc := service.NewSearchService(c.Request.Context())

	resp, err := svc.Search(c.Request.Context(), user, &query)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
