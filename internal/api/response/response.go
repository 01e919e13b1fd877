package response

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-explorer/internal/pkg/common"
)

// Success 寫出統一成功回應
func Success(c *gin.Context, status int, data any, message string, meta map[string]any) {
	c.JSON(status, common.NewSuccessResponse(data, message, meta))
}

// Error 將錯誤轉為統一錯誤回應並中止後續處理
func Error(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= 500 {
		common.LogError("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", ce.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, common.NewErrorResponse(ce))
}
