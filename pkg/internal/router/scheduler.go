package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度器管理路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	schedulerRoutes := g.Group("/scheduler")
	{
		schedulerRoutes.GET("/jobs", handle.SchedulerJobs)
		schedulerRoutes.POST("/jobs/stop", handle.SchedulerStopJobs)
		schedulerRoutes.DELETE("/jobs/:name", handle.SchedulerRemoveJob)
	}
}
