// Package export は資産一覧のCSVエクスポートを提供する。
// 永続化層には触れない純粋な変換であり、フィルタ適用後の一覧と
// 集計サマリーブロックをtext/csvとして書き出す。
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wildlifesos/inventory360/internal/model"
)

// Filters はエクスポート対象を絞り込む条件を表す。
// ゼロ値は「全件」を意味する。
type Filters struct {
	// Search は名前・施設名に対する大文字小文字を無視した部分一致。
	Search string
	// Type, Status, Site は完全一致フィルタ。空文字は条件なし。
	Type   string
	Status string
	Site   string
}

// IsZero は何の条件も設定されていないかを返す。
func (f Filters) IsZero() bool {
	return f.Search == "" && f.Type == "" && f.Status == "" && f.Site == ""
}

// String はサマリーブロックに記載するフィルタの文字列表現を返す。
func (f Filters) String() string {
	if f.IsZero() {
		return "none"
	}
	var parts []string
	if f.Search != "" {
		parts = append(parts, "search="+f.Search)
	}
	if f.Type != "" {
		parts = append(parts, "type="+f.Type)
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status)
	}
	if f.Site != "" {
		parts = append(parts, "site="+f.Site)
	}
	return strings.Join(parts, "; ")
}

// Apply はフィルタ条件に一致する資産だけを返す。入力順は保持される。
func (f Filters) Apply(assets []*model.Asset) []*model.Asset {
	if f.IsZero() {
		return assets
	}

	search := strings.ToLower(f.Search)
	var matched []*model.Asset
	for _, a := range assets {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Site), search) {
			continue
		}
		if f.Type != "" && string(a.Type) != f.Type {
			continue
		}
		if f.Status != "" && string(a.Status) != f.Status {
			continue
		}
		if f.Site != "" && a.Site != f.Site {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

// WriteCSV はフィルタ適用済みの資産一覧とサマリーブロックをwに書き出す。
// サマリーには状態・種別・取得方法ごとの件数、施設のユニーク数、
// エクスポート時刻、適用中のフィルタを含む。
func WriteCSV(w io.Writer, assets []*model.Asset, filters Filters, now time.Time) error {
	filtered := filters.Apply(assets)

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Name", "Type", "Status", "Acquired", "Date", "Site", "Description", "Logged By"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range filtered {
		record := []string{
			a.Name,
			string(a.Type),
			string(a.Status),
			string(a.Acquired),
			a.Date.Format("2006-01-02"),
			a.Site,
			a.Description,
			a.LoggedBy.Name,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	// 一覧とサマリーの間は空行で区切る
	if err := cw.Write([]string{}); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, row := range summaryRows(filtered, filters, now) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// summaryRows はフィルタ適用後の資産一覧から集計サマリーを構築する。
func summaryRows(assets []*model.Asset, filters Filters, now time.Time) [][]string {
	byStatus := map[model.AssetStatus]int{}
	byType := map[model.AssetType]int{}
	byAcquired := map[model.AssetAcquired]int{}
	sites := map[string]struct{}{}

	for _, a := range assets {
		byStatus[a.Status]++
		byType[a.Type]++
		byAcquired[a.Acquired]++
		sites[a.Site] = struct{}{}
	}

	rows := [][]string{
		{"Summary", ""},
		{"Total Assets", strconv.Itoa(len(assets))},
	}
	for _, st := range model.ValidAssetStatuses() {
		rows = append(rows, []string{"Status: " + string(st), strconv.Itoa(byStatus[st])})
	}
	for _, tp := range model.ValidAssetTypes() {
		rows = append(rows, []string{"Type: " + string(tp), strconv.Itoa(byType[tp])})
	}
	for _, aq := range model.ValidAssetAcquired() {
		rows = append(rows, []string{"Acquired: " + string(aq), strconv.Itoa(byAcquired[aq])})
	}
	rows = append(rows,
		[]string{"Unique Sites", strconv.Itoa(len(sites))},
		[]string{"Exported At", now.UTC().Format(time.RFC3339)},
		[]string{"Active Filters", filters.String()},
	)

	return rows
}
