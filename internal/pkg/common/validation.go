package common

import "fmt"

// 驗證錯誤代碼
const (
	CodeRequired      = "required"
	CodeTypeError     = "type_error"
	CodeEmpty         = "empty"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooMany       = "too_many"
	CodeInvalidFormat = "invalid_format"
	CodeSchemaError   = "schema_error"
)

// FieldError 單一欄位驗證錯誤
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult 收集欄位錯誤的驗證結果
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationResult 創建空的驗證結果
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Errors: []FieldError{}}
}

// IsValid 無錯誤時為 true
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Add 新增一個欄位錯誤
func (r *ValidationResult) Add(field, message, code string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message, Code: code})
}

// Addf 以格式化訊息新增欄位錯誤
func (r *ValidationResult) Addf(field, code, format string, args ...any) {
	r.Add(field, fmt.Sprintf(format, args...), code)
}

// Merge 將另一個結果的錯誤加上欄位前綴後合併
func (r *ValidationResult) Merge(prefix string, other *ValidationResult) {
	for _, e := range other.Errors {
		field := e.Field
		if prefix != "" {
			field = prefix + "." + e.Field
		}
		r.Add(field, e.Message, e.Code)
	}
}
