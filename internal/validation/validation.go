// Package validation はAssetレコードの正当性を定義する唯一のスキーマを提供する。
// クライアント向け（事前チェック）とサーバー向け（正となるチェック）の
// 2つの文脈で同一の定義を使い、二重管理によるドリフトを防ぐ。
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/wildlifesos/inventory360/internal/model"
)

// 日付として受理するフォーマット。HTMLのdate入力とAPIクライアントの双方に対応する。
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// emailPattern はメールアドレスの構文チェック用パターン。
// RFC完全準拠ではなく、明らかな入力ミスを弾くことが目的。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AssetInput はクライアントから受け取る生のAsset入力を表す。
// 列挙・日付はこの時点では未検証の文字列として保持する。
// LoggedByはサーバーがセッションから上書きするため、
// クライアントが送ってきた値は一切信用しない。
type AssetInput struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Acquired    string          `json:"acquired"`
	Date        string          `json:"date"`
	Site        string          `json:"site"`
	Description string          `json:"description,omitempty"`
	LoggedBy    *model.LoggedBy `json:"loggedBy,omitempty"`
}

// ValidateClientInput はloggedByを要求しない事前チェックを行う。
// 違反ゼロならnilを返す。違反はスキーマ定義順
// （name, type, status, acquired, date, site）で列挙される。
// 純粋関数であり、I/Oを行わず同一入力に対して常に同一結果を返す。
func ValidateClientInput(in AssetInput) []model.FieldError {
	var errs []model.FieldError

	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "Asset name is required"})
	}

	if !isValidType(in.Type) {
		errs = append(errs, model.FieldError{Field: "type", Message: "Please select a valid asset type"})
	}

	if !isValidStatus(in.Status) {
		errs = append(errs, model.FieldError{Field: "status", Message: "Please select a valid status"})
	}

	if !isValidAcquired(in.Acquired) {
		errs = append(errs, model.FieldError{Field: "acquired", Message: "Please select how the asset was acquired"})
	}

	if strings.TrimSpace(in.Date) == "" {
		errs = append(errs, model.FieldError{Field: "date", Message: "Date is required"})
	} else if _, ok := parseDate(in.Date); !ok {
		errs = append(errs, model.FieldError{Field: "date", Message: "Please enter a valid date"})
	}

	if strings.TrimSpace(in.Site) == "" {
		errs = append(errs, model.FieldError{Field: "site", Message: "Please select a wildlife site"})
	}

	return errs
}

// ValidateServerInput はクライアントチェックに加えてloggedByを必須とする、
// 正となるサーバー側チェックを行う。
// 違反ゼロの場合は列挙・日付を型付けしたAssetを返す。
// 返されるAssetのID・CreatedAt・UpdatedAtはストアが設定するため未設定のまま。
func ValidateServerInput(in AssetInput) (*model.Asset, []model.FieldError) {
	errs := ValidateClientInput(in)

	if in.LoggedBy == nil || strings.TrimSpace(in.LoggedBy.Name) == "" {
		errs = append(errs, model.FieldError{Field: "loggedBy.name", Message: "User name is required"})
	}
	if in.LoggedBy == nil || !emailPattern.MatchString(in.LoggedBy.Email) {
		errs = append(errs, model.FieldError{Field: "loggedBy.email", Message: "Valid email is required"})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	date, _ := parseDate(in.Date)

	return &model.Asset{
		Name:        strings.TrimSpace(in.Name),
		Type:        model.AssetType(in.Type),
		Status:      model.AssetStatus(in.Status),
		Acquired:    model.AssetAcquired(in.Acquired),
		Date:        date,
		Site:        strings.TrimSpace(in.Site),
		Description: strings.TrimSpace(in.Description),
		LoggedBy:    *in.LoggedBy,
	}, nil
}

// parseDate は受理可能なフォーマットで日付の解析を試みる。
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isValidType(s string) bool {
	for _, t := range model.ValidAssetTypes() {
		if model.AssetType(s) == t {
			return true
		}
	}
	return false
}

func isValidStatus(s string) bool {
	for _, st := range model.ValidAssetStatuses() {
		if model.AssetStatus(s) == st {
			return true
		}
	}
	return false
}

func isValidAcquired(s string) bool {
	for _, a := range model.ValidAssetAcquired() {
		if model.AssetAcquired(s) == a {
			return true
		}
	}
	return false
}
