package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wildlifesos/inventory360/internal/model"
)

// errorResponse はAPIエラーのワイヤーフォーマット。
// details はバリデーションエラー時はフィールドエラー配列、
// サーバーエラー時は診断メッセージ文字列になる。
type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Type    string `json:"type,omitempty"`
}

// statusForErrorType はエラータイプをHTTPステータスコードにマッピングする。
func statusForErrorType(errType string) int {
	switch errType {
	case model.ErrTypeValidation:
		return http.StatusBadRequest
	case model.ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrTypeNotFound:
		return http.StatusNotFound
	case model.ErrTypeDatabaseUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrTypeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteAPIError はAPIErrorをレスポンスとして書き出す。
// バリデーションエラーはフィールドエラー一覧をdetailsに含め、typeは省略する。
// レート制限エラーはerrorメッセージのみを返す。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	resp := errorResponse{
		Error: apiErr.Message,
	}

	switch apiErr.Type {
	case model.ErrTypeValidation:
		resp.Details = apiErr.Fields
	case model.ErrTypeRateLimited:
		// error のみ
	case model.ErrTypeServerError:
		resp.Type = apiErr.Type
		if apiErr.Detail != "" {
			resp.Details = apiErr.Detail
		}
	default:
		resp.Type = apiErr.Type
	}

	status := statusForErrorType(apiErr.Type)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", slog.Any("error", err))
	}
}
