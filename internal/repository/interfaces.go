// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/wildlifesos/inventory360/internal/model"
)

// AssetRepository は資産データの永続化インターフェース。
// 永続化層に触れてよいのはこの実装だけであり、エラーは分類済みの
// model.APIError（database_unavailable / server_error / not_found）として返す。
type AssetRepository interface {
	// List は全資産を作成日時の降順（新しい順）で返す。
	List(ctx context.Context) ([]*model.Asset, error)

	// Create は検証済み資産を保存し、ID・CreatedAt・UpdatedAtを設定して返す。
	Create(ctx context.Context, asset *model.Asset) (*model.Asset, error)

	// Update は指定IDの資産の可変フィールドを置き換える。
	// 元レコードのCreatedAtとLoggedByは保持される。
	// 該当レコードが存在しない場合はnot_foundエラーを返す。
	Update(ctx context.Context, id string, asset *model.Asset) (*model.Asset, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
