package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trip-backend/models"
	"trip-backend/request"
	"trip-backend/service"
)

// PlanTrip 处理行程规划请求
func PlanTrip(c *gin.Context) {
	req := &request.TripPlanRequest{}

	// 绑定请求参数
	if err := c.ShouldBindJSON(req); err != nil {
		response := models.StandardResponse{
			Data:         nil,
			Error:        "INVALID_REQUEST",
			ErrorMessage: err.Error(),
		}
		c.JSON(http.StatusBadRequest, response)
		return
	}

	// 验证请求参数
	if err := req.Validate(); err != nil {
		response := models.StandardResponse{
			Data:         nil,
			Error:        "VALIDATION_ERROR",
			ErrorMessage: err.Error(),
		}
		c.JSON(http.StatusBadRequest, response)
		return
	}

	req.Ctx = c.Request.Context()

	// 调用service方法处理业务逻辑（只传入req）
	response := service.PlanTrip(*req)

	// 根据响应中的error字段判断HTTP状态码
	statusCode := http.StatusOK
	switch response.Error {
	case "NO_ERROR":
		statusCode = http.StatusOK
	case "INVALID_QUERY":
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}

	// 返回统一响应格式
	c.JSON(statusCode, response)
}
