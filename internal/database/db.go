package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// Open はPostgreSQLデータベース接続プールを開く。
// 接続はプロセス起動時に1回だけ開き、全リクエストで共有する
// （リクエストごとの接続・切断は行わない）。
// connectTimeoutは接続確立、socketTimeoutはステートメント実行の上限時間として
// DSNに埋め込まれ、永続化呼び出しが無期限に停止することを防ぐ。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(databaseURL string, connectTimeout, socketTimeout time.Duration) (*sql.DB, error) {
	dsn, err := applyTimeouts(databaseURL, connectTimeout, socketTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// applyTimeouts は接続URLにconnect_timeoutとstatement_timeoutを付与する。
// URL側で明示されている値は上書きしない。
func applyTimeouts(databaseURL string, connectTimeout, socketTimeout time.Duration) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if q.Get("connect_timeout") == "" && connectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(connectTimeout.Seconds())))
	}
	if q.Get("statement_timeout") == "" && socketTimeout > 0 {
		q.Set("statement_timeout", strconv.Itoa(int(socketTimeout.Milliseconds())))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
