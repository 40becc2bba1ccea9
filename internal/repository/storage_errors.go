package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
	"github.com/wildlifesos/inventory360/internal/model"
)

// classifyStorageError は永続化層のエラーを一時的な接続不能（503）と
// それ以外の永続化失敗（500）に分類する。
// 一時的なエラーを区別して返すことで、クライアントが再試行を選択できる。
func classifyStorageError(op string, err error) *model.APIError {
	if isUnavailable(err) {
		return model.NewStorageUnavailableError()
	}
	return model.NewStorageError(fmt.Sprintf("%s: %v", op, err))
}

// isUnavailable は既知の一時的な接続障害シグネチャに該当するかを判定する。
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// PostgreSQLエラークラス: 08=接続例外、53=リソース不足、57=オペレーター介入
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := pqErr.Code.Class()
		return class == "08" || class == "53" || class == "57"
	}

	// ドライバがラップせずに文字列だけ返すケースへのフォールバック
	msg := err.Error()
	for _, sig := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"broken pipe",
		"i/o timeout",
	} {
		if strings.Contains(msg, sig) {
			return true
		}
	}

	return false
}
