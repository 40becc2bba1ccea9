package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wildlifesos/inventory360/internal/model"
)

// assetColumns はSELECT句で使用するassetsテーブルの列一覧。
const assetColumns = `id, name, type, status, acquired, date, site, description,
	logged_by_name, logged_by_email, created_at, updated_at`

// PostgresAssetRepo はPostgreSQLを使用した資産リポジトリ。
type PostgresAssetRepo struct {
	db *sql.DB
}

// NewPostgresAssetRepo はPostgresAssetRepoを生成する。
func NewPostgresAssetRepo(db *sql.DB) *PostgresAssetRepo {
	return &PostgresAssetRepo{db: db}
}

// List は全資産を作成日時の降順で返す。
func (r *PostgresAssetRepo) List(ctx context.Context) ([]*model.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, classifyStorageError("list assets", err)
	}
	defer rows.Close()

	// 0件でもJSONで配列になるよう、nilではなく空スライスを返す
	assets := []*model.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, classifyStorageError("scan asset", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStorageError("iterate assets", err)
	}

	return assets, nil
}

// Create は検証済み資産を保存する。
// IDの採番とCreatedAt・UpdatedAtの設定はここで行う。
func (r *PostgresAssetRepo) Create(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	stored := *asset
	stored.ID = uuid.New().String()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, name, type, status, acquired, date, site, description,
			logged_by_name, logged_by_email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		stored.ID, stored.Name, string(stored.Type), string(stored.Status),
		string(stored.Acquired), stored.Date, stored.Site, stored.Description,
		stored.LoggedBy.Name, stored.LoggedBy.Email, stored.CreatedAt, stored.UpdatedAt,
	)
	if err != nil {
		return nil, classifyStorageError("insert asset", err)
	}

	return &stored, nil
}

// Update は指定IDの資産の可変フィールドを1文で置き換える。
// logged_by_*とcreated_atはSET句に含めないため、元の値が構造的に保持される。
// 同時更新はlast-write-winsであり、バージョンチェックは行わない。
func (r *PostgresAssetRepo) Update(ctx context.Context, id string, asset *model.Asset) (*model.Asset, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE assets
		 SET name = $2, type = $3, status = $4, acquired = $5, date = $6,
		     site = $7, description = $8, updated_at = $9
		 WHERE id = $1
		 RETURNING `+assetColumns,
		id, asset.Name, string(asset.Type), string(asset.Status),
		string(asset.Acquired), asset.Date, asset.Site, asset.Description,
		time.Now().UTC(),
	)

	updated, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, model.NewNotFoundError(id)
	}
	if err != nil {
		return nil, classifyStorageError("update asset", err)
	}

	return updated, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAsset は1行をmodel.Assetに読み出す。
func scanAsset(row rowScanner) (*model.Asset, error) {
	asset := &model.Asset{}
	err := row.Scan(
		&asset.ID, &asset.Name, &asset.Type, &asset.Status, &asset.Acquired,
		&asset.Date, &asset.Site, &asset.Description,
		&asset.LoggedBy.Name, &asset.LoggedBy.Email,
		&asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// compile-time interface check
var _ AssetRepository = (*PostgresAssetRepo)(nil)
