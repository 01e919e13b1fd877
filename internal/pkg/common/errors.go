package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CustomError 定義自定義錯誤類型，服務層與 HTTP 層之間唯一的錯誤型別
type CustomError struct {
	Code             string         // 錯誤代碼
	Message          string         // 錯誤信息
	Err              error          // 原始錯誤
	Status           int            // HTTP 狀態碼
	Details          map[string]any // 額外資訊
	ValidationErrors []FieldError   // 欄位驗證錯誤
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以穿透
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WithDetails 回傳附帶 details 的副本
func (e *CustomError) WithDetails(details map[string]any) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}

// AsCustomError 將任意錯誤轉為 CustomError，未知錯誤視為 500
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return NewServerError("Internal server error", err)
}

// 預定義錯誤代碼
const (
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeNotFound         = "not_found"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeFileError        = "file_error"
	ErrCodeTooManyRequests  = "too_many_requests"
	ErrCodeRequestTooLarge  = "request_too_large"
	ErrCodeExternalAPI      = "external_api_error"
	ErrCodeInternalError    = "internal_server_error"
	ErrCodeRequestTimeout   = "request_timeout"
)

// NewValidationFailed 由驗證結果建立 422 錯誤
func NewValidationFailed(result *ValidationResult) *CustomError {
	summary := "Validation error found"
	if len(result.Errors) > 1 {
		summary = "Multiple validation errors found"
	}
	return &CustomError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed - please check your data and try again",
		Status:  http.StatusUnprocessableEntity,
		Details: map[string]any{
			"error_count":        len(result.Errors),
			"validation_summary": summary,
		},
		ValidationErrors: result.Errors,
	}
}

// NewNotFound 建立 404 錯誤，resourceType 例如 "Recipe"、"External recipe"
func NewNotFound(resourceType, resourceID string) *CustomError {
	message := resourceType + " not found"
	details := map[string]any{}
	if resourceID != "" {
		message += fmt.Sprintf(" with ID '%s'", resourceID)
		details["requested_id"] = resourceID
		details["resource_type"] = strings.ToLower(resourceType)
	}
	return &CustomError{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
		Details: details,
	}
}

// NewBadRequest 建立 400 錯誤
func NewBadRequest(message string, details map[string]any) *CustomError {
	return &CustomError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// NewFileError 建立檔案相關的 400 錯誤
func NewFileError(message string, details map[string]any) *CustomError {
	return &CustomError{
		Code:    ErrCodeFileError,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// NewExternalAPIError 建立外部服務失敗的 502 錯誤
func NewExternalAPIError(message string, err error) *CustomError {
	return &CustomError{
		Code:    ErrCodeExternalAPI,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
		Details: map[string]any{"upstream": "themealdb"},
	}
}

// NewServerError 建立 500 錯誤
func NewServerError(message string, err error) *CustomError {
	return &CustomError{
		Code:    ErrCodeInternalError,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
		Details: map[string]any{"suggestion": "Please try again later or contact support"},
	}
}

// 預定義錯誤
var (
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrRequestTooLarge = NewError(ErrCodeRequestTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "Request timeout", http.StatusGatewayTimeout, nil)
	ErrInternalError   = NewServerError("Internal server error", nil)
)
