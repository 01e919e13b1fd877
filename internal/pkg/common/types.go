package common

// SuccessResponse 統一成功回應
type SuccessResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ErrorResponse 統一錯誤回應
type ErrorResponse struct {
	Error                bool           `json:"error"`
	Message              string         `json:"message"`
	ErrorCode            string         `json:"error_code"`
	StatusCode           int            `json:"status_code"`
	Details              map[string]any `json:"details,omitempty"`
	ValidationErrors     []FieldError   `json:"validation_errors,omitempty"`
	ValidationErrorCount int            `json:"validation_error_count,omitempty"`
}

// NewSuccessResponse 創建成功回應
func NewSuccessResponse(data any, message string, meta map[string]any) SuccessResponse {
	if message == "" {
		message = "Success"
	}
	return SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// NewErrorResponse 由 CustomError 創建錯誤回應
func NewErrorResponse(e *CustomError) ErrorResponse {
	resp := ErrorResponse{
		Error:      true,
		Message:    e.Message,
		ErrorCode:  e.Code,
		StatusCode: e.Status,
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	if len(e.ValidationErrors) > 0 {
		resp.ValidationErrors = e.ValidationErrors
		resp.ValidationErrorCount = len(e.ValidationErrors)
	}
	return resp
}
