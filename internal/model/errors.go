// Package model はドメインモデルを定義する。
package model

import "fmt"

// エラー種別。クライアントに返すJSONの"type"フィールドに対応する。
const (
	ErrTypeValidation          = "validation_error"
	ErrTypeUnauthorized        = "unauthorized"
	ErrTypeNotFound            = "not_found"
	ErrTypeDatabaseUnavailable = "database_unavailable"
	ErrTypeServerError         = "server_error"
	ErrTypeRateLimited         = "rate_limited"
)

// FieldError はバリデーション違反1件を表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError はAPIが返すエラーの分類と内容を表す。
// Detailsはバリデーションエラーのフィールド別メッセージ一覧、
// もしくは内部エラーの補足文字列を保持する。
type APIError struct {
	Type    string
	Message string
	Fields  []FieldError
	Detail  string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewValidationError はフィールド別メッセージ付きのバリデーションエラーを生成する。
// 違反は常にスキーマ定義順で列挙される。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Type:    ErrTypeValidation,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Type:    ErrTypeUnauthorized,
		Message: "Authentication required",
	}
}

// NewNotFoundError は対象レコード不在エラーを生成する。
func NewNotFoundError(id string) *APIError {
	return &APIError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("Asset not found: %s", id),
	}
}

// NewStorageUnavailableError は一時的なDB接続不能エラーを生成する。
// クライアントは時間をおいて再試行してよい（503）。
func NewStorageUnavailableError() *APIError {
	return &APIError{
		Type:    ErrTypeDatabaseUnavailable,
		Message: "Database temporarily unavailable",
	}
}

// NewStorageError は接続不能以外の永続化層エラーを生成する（500）。
func NewStorageError(detail string) *APIError {
	return &APIError{
		Type:    ErrTypeServerError,
		Message: "Failed to persist asset",
		Detail:  detail,
	}
}

// NewInternalError は分類不能なサーバー内部エラーを生成する（500）。
func NewInternalError() *APIError {
	return &APIError{
		Type:    ErrTypeServerError,
		Message: "Internal server error",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する（429）。
func NewRateLimitedError() *APIError {
	return &APIError{
		Type:    ErrTypeRateLimited,
		Message: "Rate limit exceeded",
	}
}
