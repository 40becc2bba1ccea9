// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wildlifesos/inventory360/internal/export"
	"github.com/wildlifesos/inventory360/internal/middleware"
	"github.com/wildlifesos/inventory360/internal/model"
	"github.com/wildlifesos/inventory360/internal/validation"
)

// AssetServiceInterface は資産ハンドラーが必要とするサービスインターフェース。
type AssetServiceInterface interface {
	// List は全資産を登録日時の降順で返す。
	List(ctx context.Context) ([]*model.Asset, error)
	// Create は入力を検証し、認証済みユーザーを記録者として資産を登録する。
	Create(ctx context.Context, in validation.AssetInput, user *model.User) (*model.Asset, error)
	// Update は入力を検証し、既存資産を更新する。
	Update(ctx context.Context, in validation.AssetInput, user *model.User) (*model.Asset, error)
}

// AssetMetricsRecorder は資産操作のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type AssetMetricsRecorder interface {
	RecordAssetCreated()
	RecordAssetUpdated()
	RecordCSVExport()
	RecordStorageError(kind string)
}

// AssetHandler は資産管理のHTTPハンドラー。
type AssetHandler struct {
	service AssetServiceInterface
	metrics AssetMetricsRecorder
}

// NewAssetHandler はAssetHandlerを生成する。metricsはnil可。
func NewAssetHandler(service AssetServiceInterface, metrics AssetMetricsRecorder) *AssetHandler {
	return &AssetHandler{
		service: service,
		metrics: metrics,
	}
}

// ListAssets は全資産の一覧を返す。
// GET /api/asset
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if assets == nil {
		// nilのままだとJSONでnullになるため、空配列として返す
		assets = []*model.Asset{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assets": assets,
	})
}

// CreateAsset は資産を登録する。
// POST /api/asset
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthorizedError())
		return
	}

	in, ok := decodeAssetInput(w, r)
	if !ok {
		return
	}

	asset, err := h.service.Create(r.Context(), in, user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAssetCreated()
	}
	slog.Info("asset created",
		slog.String("asset_id", asset.ID),
		slog.String("logged_by", asset.LoggedBy.Email),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"insertedId": asset.ID,
		"asset":      asset,
	})
}

// UpdateAsset は既存資産を更新する。
// PUT /api/asset
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthorizedError())
		return
	}

	in, ok := decodeAssetInput(w, r)
	if !ok {
		return
	}

	asset, err := h.service.Update(r.Context(), in, user)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAssetUpdated()
	}
	slog.Info("asset updated",
		slog.String("asset_id", asset.ID),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"updatedId": asset.ID,
	})
}

// ExportAssets は資産一覧をCSVでエクスポートする。
// GET /api/asset/export?search=&type=&status=&site=
func (h *AssetHandler) ExportAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	q := r.URL.Query()
	filters := export.Filters{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Site:   q.Get("site"),
	}

	now := time.Now().UTC()
	filename := fmt.Sprintf("wildlife-sos-inventory-%s.csv", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// 絞り込みはWriteCSV側で行う
	if err := export.WriteCSV(w, assets, filters, now); err != nil {
		// ヘッダー送出後はエラーレスポンスに切り替えられないため、ログのみ
		slog.Error("failed to write CSV export", slog.String("error", err.Error()))
		return
	}

	if h.metrics != nil {
		h.metrics.RecordCSVExport()
	}
}

// ListSites は資産を配置できる保護施設の一覧を返す。
// GET /api/sites
func (h *AssetHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sites": model.WildlifeSites,
	})
}

// handleServiceError はサービス層から返されたエラーをレスポンスに変換する。
func (h *AssetHandler) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if h.metrics != nil &&
			(apiErr.Type == model.ErrTypeDatabaseUnavailable || apiErr.Type == model.ErrTypeServerError) {
			h.metrics.RecordStorageError(apiErr.Type)
		}
		middleware.WriteAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteAPIError(w, model.NewInternalError())
}

// decodeAssetInput はリクエストボディを資産入力として読み取る。
// 解析に失敗した場合はエラーレスポンスを書き込み、falseを返す。
func decodeAssetInput(w http.ResponseWriter, r *http.Request) (validation.AssetInput, bool) {
	var in validation.AssetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteAPIError(w, model.NewValidationError([]model.FieldError{
			{Field: "body", Message: "Request body must be valid JSON"},
		}))
		return validation.AssetInput{}, false
	}
	return in, true
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
