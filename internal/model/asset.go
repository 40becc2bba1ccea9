// Package model はドメインモデルを定義する。
package model

import "time"

// AssetType は資産の種別を表す。閉じた列挙型であり、
// 定義外の値はバリデーション境界で拒否される。
type AssetType string

const (
	// AssetTypeLongTerm は長期利用設備を表す。
	AssetTypeLongTerm AssetType = "long-term"
	// AssetTypeMedical は医療用品を表す。
	AssetTypeMedical AssetType = "medical"
	// AssetTypePerishable は消耗品・生鮮品を表す。
	AssetTypePerishable AssetType = "perishable"
)

// AssetStatus は資産の利用状態を表す。
type AssetStatus string

const (
	// AssetStatusActive は使用中の状態。
	AssetStatusActive AssetStatus = "active"
	// AssetStatusPhasedOut は退役済みの状態。
	AssetStatusPhasedOut AssetStatus = "phased-out"
)

// AssetAcquired は資産の取得方法を表す。
type AssetAcquired string

const (
	// AssetAcquiredDonated は寄贈による取得。
	AssetAcquiredDonated AssetAcquired = "donated"
	// AssetAcquiredBought は購入による取得。
	AssetAcquiredBought AssetAcquired = "bought"
)

// LoggedBy は記録を登録した認証済みユーザーの身元を表す。
// クライアント入力からは決して受け取らず、サーバー側でセッションから付与する。
type LoggedBy struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Asset は保護施設で追跡する物理資産1件を表す。
// ID・CreatedAt・UpdatedAtはストアが採番・設定する。
type Asset struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        AssetType     `json:"type"`
	Status      AssetStatus   `json:"status"`
	Acquired    AssetAcquired `json:"acquired"`
	Date        time.Time     `json:"date"`
	Site        string        `json:"site"`
	Description string        `json:"description,omitempty"`
	LoggedBy    LoggedBy      `json:"loggedBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ValidAssetTypes はAssetTypeの全列挙値をスキーマ定義順で返す。
func ValidAssetTypes() []AssetType {
	return []AssetType{AssetTypeLongTerm, AssetTypeMedical, AssetTypePerishable}
}

// ValidAssetStatuses はAssetStatusの全列挙値をスキーマ定義順で返す。
func ValidAssetStatuses() []AssetStatus {
	return []AssetStatus{AssetStatusActive, AssetStatusPhasedOut}
}

// ValidAssetAcquired はAssetAcquiredの全列挙値をスキーマ定義順で返す。
func ValidAssetAcquired() []AssetAcquired {
	return []AssetAcquired{AssetAcquiredDonated, AssetAcquiredBought}
}
