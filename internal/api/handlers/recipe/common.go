package recipe

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-explorer/internal/pkg/common"
)

// readJSONObject 讀取請求體並解析為 JSON 物件
func readJSONObject(c *gin.Context) (map[string]any, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, common.ErrRequestTooLarge.WithDetails(map[string]any{"max_size": maxErr.Limit})
		}
		return nil, common.NewBadRequest("Failed to read request body", nil)
	}

	var payload any
	if err := common.ParseJSONBytes(body, &payload); err != nil {
		return nil, common.NewBadRequest("Invalid JSON in request body", map[string]any{
			"json_error": err.Error(),
		})
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		result := common.NewValidationResult()
		result.Add("body", "Request body must be a JSON object", common.CodeTypeError)
		return nil, common.NewValidationFailed(result)
	}
	return obj, nil
}

// searchParam 回傳 search 查詢參數；未提供時為 nil
func searchParam(c *gin.Context) *string {
	if v, ok := c.GetQuery("search"); ok {
		return &v
	}
	return nil
}
