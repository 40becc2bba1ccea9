package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- FixedWindowLimiter のテスト ---

func TestFixedWindowLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		if got := l.CheckAndRecord("10.0.0.1", now); got != Allowed {
			t.Fatalf("request %d: decision = %v, want Allowed", i+1, got)
		}
	}

	// 61リクエスト目は拒否される
	if got := l.CheckAndRecord("10.0.0.1", now); got != Rejected {
		t.Errorf("request 61: decision = %v, want Rejected", got)
	}
}

func TestFixedWindowLimiter_ResetsAfterWindowElapsed(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 61; i++ {
		l.CheckAndRecord("10.0.0.1", start)
	}
	if got := l.CheckAndRecord("10.0.0.1", start); got != Rejected {
		t.Fatalf("decision before reset = %v, want Rejected", got)
	}

	// ウィンドウ幅を超えて経過した最初のリクエストでカウントがリセットされる
	after := start.Add(time.Minute + time.Second)
	if got := l.CheckAndRecord("10.0.0.1", after); got != Allowed {
		t.Errorf("decision after window elapsed = %v, want Allowed", got)
	}
}

// ウィンドウ境界をまたぐバーストは最大で上限の2倍まで通過しうる。
func TestFixedWindowLimiter_BoundaryBurstPassesTwiceTheLimit(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	windowEnd := time.Date(2026, 3, 1, 12, 0, 59, 0, time.UTC)
	nextWindow := windowEnd.Add(2 * time.Second)

	allowed := 0
	for i := 0; i < 60; i++ {
		if l.CheckAndRecord("10.0.0.1", windowEnd) == Allowed {
			allowed++
		}
	}
	for i := 0; i < 60; i++ {
		if l.CheckAndRecord("10.0.0.1", nextWindow) == Allowed {
			allowed++
		}
	}

	if allowed != 120 {
		t.Errorf("allowed across boundary = %d, want 120", allowed)
	}
}

func TestFixedWindowLimiter_CountsClientsIndependently(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           3,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// クライアントAを上限まで使い切る
	for i := 0; i < 3; i++ {
		l.CheckAndRecord("10.0.0.1", now)
	}
	if got := l.CheckAndRecord("10.0.0.1", now); got != Rejected {
		t.Fatalf("client A decision = %v, want Rejected", got)
	}

	// クライアントBは影響を受けない
	if got := l.CheckAndRecord("10.0.0.2", now); got != Allowed {
		t.Errorf("client B decision = %v, want Allowed", got)
	}
}

func TestFixedWindowLimiter_SweepRemovesStaleEntries(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		l.CheckAndRecord(fmt.Sprintf("10.0.0.%d", i), start)
	}
	if got := l.EntryCount(); got != 100 {
		t.Fatalf("entry count before sweep = %d, want 100", got)
	}

	// ウィンドウを過ぎたエントリは全て削除される
	l.sweep(start.Add(2 * time.Minute))
	if got := l.EntryCount(); got != 0 {
		t.Errorf("entry count after sweep = %d, want 0", got)
	}
}

func TestFixedWindowLimiter_SweepKeepsActiveEntries(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           60,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	l.CheckAndRecord("stale-client", start)
	l.CheckAndRecord("active-client", start.Add(90*time.Second))

	l.sweep(start.Add(100 * time.Second))

	if got := l.EntryCount(); got != 1 {
		t.Errorf("entry count after sweep = %d, want 1", got)
	}
}

// --- RateLimitMiddleware のテスト ---

// mockRateLimitRecorder は拒否回数を数えるモック。
type mockRateLimitRecorder struct {
	rejections int
}

func (m *mockRateLimitRecorder) RecordRateLimitRejection() {
	m.rejections++
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           2,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	recorder := &mockRateLimitRecorder{}
	handlerCallCount := 0
	handler := NewRateLimitMiddleware(l, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// 上限内の2リクエストは通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 3リクエスト目は429で、ハンドラーは呼ばれない
	req := httptest.NewRequest(http.MethodPost, "/api/asset", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
	if handlerCallCount != 2 {
		t.Errorf("handler call count = %d, want 2", handlerCallCount)
	}
	if recorder.rejections != 1 {
		t.Errorf("recorded rejections = %d, want 1", recorder.rejections)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Rate limit exceeded" {
		t.Errorf("error = %v, want %q", body["error"], "Rate limit exceeded")
	}
	if _, ok := body["type"]; ok {
		t.Errorf("429 body should not contain type field, got %v", body["type"])
	}
}

func TestRateLimitMiddleware_SeparatesClientsByRemoteAddr(t *testing.T) {
	l := NewFixedWindowLimiter(FixedWindowConfig{
		Limit:           1,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer l.Stop()

	handler := NewRateLimitMiddleware(l, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// クライアントAが上限を使い切る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	// クライアントBには影響しない
	req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
	req.RemoteAddr = "10.0.0.2:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("client B status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

// --- ClientKey のテスト ---

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{
			name:       "RemoteAddrのホスト部を採用",
			remoteAddr: "192.0.2.10:54321",
			want:       "192.0.2.10",
		},
		{
			name:       "ポート無しのRemoteAddrはそのまま採用",
			remoteAddr: "192.0.2.10",
			want:       "192.0.2.10",
		},
		{
			name:       "RemoteAddrが空ならX-Forwarded-Forの先頭ホップ",
			remoteAddr: "",
			xff:        "203.0.113.5, 10.0.0.1",
			want:       "203.0.113.5",
		},
		{
			name:       "どちらも無ければunknown",
			remoteAddr: "",
			want:       "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			if got := ClientKey(req); got != tt.want {
				t.Errorf("ClientKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- LoginRateLimiter のテスト ---

func TestLoginRateLimiter_Returns429AfterBurstExhausted(t *testing.T) {
	cfg := DefaultLoginRateLimiterConfig()
	cfg.Rate = 0.001 // テスト中の補充をほぼ止める
	cfg.Burst = 3

	l := NewLoginRateLimiter(cfg)
	defer l.Stop()

	handler := l.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}
