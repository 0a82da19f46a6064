package router

import (
	"github.com/gin-gonic/gin"

	"trip-backend/handler"
)

// RegisterRoutes 注册项目的所有HTTP路由
func RegisterRoutes(r *gin.Engine) {
	// 注册路由
	r.POST("/api/trip/plan", handler.PlanTrip)
}
