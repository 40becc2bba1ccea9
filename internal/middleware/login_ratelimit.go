package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wildlifesos/inventory360/internal/model"
)

// LoginRateLimiterConfig はログイン試行レート制限の設定。
type LoginRateLimiterConfig struct {
	// Rate は1秒あたりの補充レート。10/60 = 10試行/分相当。
	Rate rate.Limit
	// Burst は瞬間的に許容する試行数。
	Burst int
	// CleanupInterval は期限切れエントリのクリーンアップ間隔。
	CleanupInterval time.Duration
}

// DefaultLoginRateLimiterConfig はデフォルト設定（10試行/分）を返す。
func DefaultLoginRateLimiterConfig() LoginRateLimiterConfig {
	return LoginRateLimiterConfig{
		Rate:            rate.Limit(10.0 / 60.0),
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLoginLimiter はクライアント1つ分のトークンバケットとアクセス時刻。
type clientLoginLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginRateLimiter はOAuthログイン開始エンドポイント専用のレートリミッター。
// 認可コードの総当たりやログインループの暴走からIdPを守るため、
// APIの固定ウィンドウ制限より厳しいトークンバケットを別枠で適用する。
type LoginRateLimiter struct {
	config LoginRateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLoginLimiter

	stopCh chan struct{}
}

// NewLoginRateLimiter はLoginRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewLoginRateLimiter(config LoginRateLimiterConfig) *LoginRateLimiter {
	l := &LoginRateLimiter{
		config:   config,
		limiters: make(map[string]*clientLoginLimiter),
		stopCh:   make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (l *LoginRateLimiter) Stop() {
	close(l.stopCh)
}

// Middleware はログイン試行を制限するミドルウェアを返す。
func (l *LoginRateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := ClientKey(r)

			if !l.limiterFor(clientKey).Allow() {
				slog.Warn("login rate limit exceeded",
					slog.String("client_key", clientKey),
				)
				WriteAPIError(w, model.NewRateLimitedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// limiterFor はクライアントキーのトークンバケットを取得または作成する。
func (l *LoginRateLimiter) limiterFor(clientKey string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cl, ok := l.limiters[clientKey]; ok {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(l.config.Rate, l.config.Burst)
	l.limiters[clientKey] = &clientLoginLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (l *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// cleanup は最終アクセスからCleanupIntervalの2倍を超えたエントリを削除する。
func (l *LoginRateLimiter) cleanup() {
	ttl := l.config.CleanupInterval * 2
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, cl := range l.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(l.limiters, key)
		}
	}
}
