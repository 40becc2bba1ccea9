package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wildlifesos/inventory360/internal/model"
)

// Decision はレート制限の判定結果を表す。
type Decision int

const (
	// Allowed はリクエストの通過を許可する判定。
	Allowed Decision = iota
	// Rejected はレート制限超過による拒否判定。
	Rejected
)

// ClientLimiter はクライアントキー単位のレート制限判定インターフェース。
// 複数プロセス構成では共有カウンタ（外部キャッシュ等）の実装に
// 差し替えられるよう、判定をこの1メソッドに集約している。
type ClientLimiter interface {
	// CheckAndRecord はリクエスト1件を記録し、通過可否を判定する。
	CheckAndRecord(clientKey string, now time.Time) Decision
}

// FixedWindowConfig は固定ウィンドウレートリミッターの設定。
type FixedWindowConfig struct {
	Limit           int           // ウィンドウあたりの許可リクエスト数
	Window          time.Duration // ウィンドウ幅
	CleanupInterval time.Duration // 期限切れエントリのスイープ間隔
}

// DefaultFixedWindowConfig はデフォルト設定（60リクエスト/60秒）を返す。
func DefaultFixedWindowConfig() FixedWindowConfig {
	return FixedWindowConfig{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// rateLimitEntry はクライアントキー1つ分のウィンドウ状態。
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// FixedWindowLimiter はクライアントキーごとの固定ウィンドウカウンタ。
// スライディングウィンドウではないため、ウィンドウ境界をまたぐバーストは
// 最大で上限の2倍まで通過しうる。ベストエフォートのスロットルであり
// 厳密なSLAではないため、この誤差は許容する。
//
// プロセス内のメモリ上でのみカウントし、プロセス間の協調も
// 再起動をまたぐ永続化も行わない（単一プロセス前提の制約）。
type FixedWindowLimiter struct {
	config FixedWindowConfig

	mu      sync.Mutex
	entries map[string]*rateLimitEntry

	stopCh chan struct{}
}

// NewFixedWindowLimiter はFixedWindowLimiterを生成する。
// バックグラウンドで期限切れエントリのスイープを開始するため、
// 使い終わったらStopを呼ぶこと。
func NewFixedWindowLimiter(config FixedWindowConfig) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		config:  config,
		entries: make(map[string]*rateLimitEntry),
		stopCh:  make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

// Stop はスイープのバックグラウンドゴルーチンを停止する。
func (l *FixedWindowLimiter) Stop() {
	close(l.stopCh)
}

// CheckAndRecord はリクエスト1件を記録し、通過可否を判定する。
// エントリが無ければcount=1で作成して許可。ウィンドウが経過していれば
// count=1でリセットして許可（古いカウントは破棄）。それ以外はインクリメントし、
// 上限を超えた時点でRejectedを返す。キーごとの判定はロック下で行われ、
// 同一クライアントの同時リクエストでカウントが失われることはない。
func (l *FixedWindowLimiter) CheckAndRecord(clientKey string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[clientKey]
	if !ok || now.Sub(entry.windowStart) > l.config.Window {
		l.entries[clientKey] = &rateLimitEntry{count: 1, windowStart: now}
		return Allowed
	}

	entry.count++
	if entry.count > l.config.Limit {
		return Rejected
	}
	return Allowed
}

// EntryCount は現在保持しているクライアントキーのエントリ数を返す。
// テストおよびメトリクス用。
func (l *FixedWindowLimiter) EntryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweepLoop はバックグラウンドで期限切れエントリを定期的に削除する。
// 掃除しない場合、観測した全クライアントキーがプロセス終了まで
// 溜まり続けるため、ウィンドウを過ぎたエントリを落とす。
func (l *FixedWindowLimiter) sweepLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// sweep はウィンドウ開始から1ウィンドウ以上経過したエントリを削除する。
func (l *FixedWindowLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.config.Window {
			delete(l.entries, key)
		}
	}
}

// RateLimitRecorder はレート制限拒否のメトリクス記録インターフェース。
type RateLimitRecorder interface {
	RecordRateLimitRejection()
}

// NewRateLimitMiddleware はAPIパス配下の全リクエストをクライアントキー単位で
// 制限するミドルウェアを返す。拒否時は429を返し、後続のハンドラーは
// 一切実行しない（ボディの読み取りもDBアクセスも行わない）。
// recorderはnil可。
func NewRateLimitMiddleware(limiter ClientLimiter, recorder RateLimitRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := ClientKey(r)

			if limiter.CheckAndRecord(clientKey, time.Now()) == Rejected {
				if recorder != nil {
					recorder.RecordRateLimitRejection()
				}
				slog.Warn("rate limit exceeded",
					slog.String("client_key", clientKey),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewRateLimitedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey はレート制限のバケット単位となるクライアント識別子を決定する。
// 直接接続元のIP、X-Forwarded-Forの先頭ホップの順で採用し、
// どちらも得られない場合は"unknown"に落とす。
func ClientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	return "unknown"
}
