// Package asset は資産CRUDのビジネスロジックを提供する。
// バリデーションが通るまでストアには一切触れない（部分書き込みなし）。
package asset

import (
	"context"
	"strings"

	"github.com/wildlifesos/inventory360/internal/model"
	"github.com/wildlifesos/inventory360/internal/repository"
	"github.com/wildlifesos/inventory360/internal/validation"
)

// Service は資産CRUDのオーケストレーションを行う。
type Service struct {
	repo repository.AssetRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.AssetRepository) *Service {
	return &Service{repo: repo}
}

// List は全資産を作成日時の新しい順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Asset, error) {
	return s.repo.List(ctx)
}

// Create はクライアント入力を検証し、新規資産を保存する。
// loggedByはクライアント入力を破棄し、必ず認証済みユーザーから付与する。
// 検証エラーの場合はストアへのアクセスを行わない。
func (s *Service) Create(ctx context.Context, in validation.AssetInput, user *model.User) (*model.Asset, error) {
	attachLoggedBy(&in, user)

	asset, fieldErrs := validation.ValidateServerInput(in)
	if len(fieldErrs) > 0 {
		return nil, model.NewValidationError(fieldErrs)
	}

	return s.repo.Create(ctx, asset)
}

// Update はクライアント入力を検証し、指定IDの資産の可変フィールドを置き換える。
// 元レコードのCreatedAtとLoggedByはストア側で保持される。
// 同時更新に対する楽観ロックは行わない（last-write-wins）。
func (s *Service) Update(ctx context.Context, in validation.AssetInput, user *model.User) (*model.Asset, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, model.NewValidationError([]model.FieldError{
			{Field: "id", Message: "Asset id is required"},
		})
	}

	attachLoggedBy(&in, user)

	asset, fieldErrs := validation.ValidateServerInput(in)
	if len(fieldErrs) > 0 {
		return nil, model.NewValidationError(fieldErrs)
	}

	return s.repo.Update(ctx, in.ID, asset)
}

// attachLoggedBy はセッションのユーザーでloggedByを上書きする。
// クライアントが送ってきたloggedByは信用せず必ず破棄する（なりすまし防止）。
// 表示名が未設定のアカウントはメールアドレスのローカル部で補う。
func attachLoggedBy(in *validation.AssetInput, user *model.User) {
	name := user.Name
	if name == "" {
		if at := strings.Index(user.Email, "@"); at > 0 {
			name = user.Email[:at]
		}
	}
	in.LoggedBy = &model.LoggedBy{Name: name, Email: user.Email}
}
