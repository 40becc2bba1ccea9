package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCSRFMiddleware_SafeMethodSetsCookie(t *testing.T) {
	handler := NewCSRFMiddleware(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			csrfCookie = c
		}
	}
	if csrfCookie == nil {
		t.Fatal("csrf_token cookie should be set on safe method")
	}
	if csrfCookie.HttpOnly {
		t.Error("csrf_token cookie must be readable by the frontend")
	}
}

func TestCSRFMiddleware_MutatingMethodRequiresToken(t *testing.T) {
	tests := []struct {
		name        string
		cookieValue string
		headerValue string
		wantStatus  int
	}{
		{
			name:        "トークン一致で通過",
			cookieValue: "token-123",
			headerValue: "token-123",
			wantStatus:  http.StatusOK,
		},
		{
			name:       "Cookie欠落は403",
			wantStatus: http.StatusForbidden,
		},
		{
			name:        "ヘッダー欠落は403",
			cookieValue: "token-123",
			wantStatus:  http.StatusForbidden,
		},
		{
			name:        "トークン不一致は403",
			cookieValue: "token-123",
			headerValue: "token-456",
			wantStatus:  http.StatusForbidden,
		},
	}

	handler := NewCSRFMiddleware(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/asset", nil)
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookieValue})
			}
			if tt.headerValue != "" {
				req.Header.Set(csrfHeaderName, tt.headerValue)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestCSRFTokenHandler_GeneratesAndReusesToken(t *testing.T) {
	handler := NewCSRFTokenHandler(CSRFConfig{})

	// 初回はトークンを新規生成してCookieに設定する
	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	token := body["token"]
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	// 2回目は既存Cookieのトークンをそのまま返す
	req2 := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	req2.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	var body2 map[string]string
	if err := json.NewDecoder(w2.Body).Decode(&body2); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body2["token"] != token {
		t.Errorf("token = %q, want reused %q", body2["token"], token)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("existing token should not be re-set as a cookie")
	}
}
