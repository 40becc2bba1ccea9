package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wildlifesos/inventory360/internal/model"
)

// mockSessionFinder は関数フィールドで挙動を差し替えるモック。
type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.findByIDFn(ctx, id)
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

func validSessionFinder(userID string) *mockSessionFinder {
	return &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        id,
				UserID:    userID,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
}

func TestSessionResolver_InjectsUserIntoContext(t *testing.T) {
	sessions := validSessionFinder("user-1")
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if id != "user-1" {
				t.Errorf("FindByID id = %q, want %q", id, "user-1")
			}
			return &model.User{ID: "user-1", Name: "Asha Rao", Email: "ranger@wsos.org"}, nil
		},
	}

	var gotUser *model.User
	handler := NewSessionResolver(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-abc"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if gotUser == nil {
		t.Fatal("user not injected into context")
	}
	if gotUser.Email != "ranger@wsos.org" {
		t.Errorf("user email = %q, want %q", gotUser.Email, "ranger@wsos.org")
	}
}

func TestSessionResolver_PassesThroughWithoutCookie(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			t.Error("FindByID should not be called without a cookie")
			return nil, nil
		},
	}
	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	called := false
	handler := NewSessionResolver(sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, err := UserFromContext(r.Context()); err == nil {
			t.Error("context should not contain a user")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("next handler should be called for unauthenticated request")
	}
}

func TestSessionResolver_PassesThroughOnInvalidSession(t *testing.T) {
	tests := []struct {
		name     string
		sessions *mockSessionFinder
	}{
		{
			name: "セッションが見つからない",
			sessions: &mockSessionFinder{
				findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
					return nil, nil
				},
			},
		},
		{
			name: "セッション検索がエラー",
			sessions: &mockSessionFinder{
				findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
					return nil, errors.New("db down")
				},
			},
		},
	}

	users := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSessionResolver(tt.sessions, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := UserFromContext(r.Context()); err == nil {
					t.Error("context should not contain a user")
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/asset", nil)
			req.AddCookie(&http.Cookie{Name: "session_id", Value: "sess-abc"})
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Result().StatusCode != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
			}
		})
	}
}

func TestRequireUser_Returns401WithoutUser(t *testing.T) {
	called := false
	handler := RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/asset", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler should not be called")
	}
}

func TestRequireUser_PassesAuthenticatedRequest(t *testing.T) {
	handler := RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/asset", nil)
	req = req.WithContext(ContextWithUser(req.Context(), &model.User{ID: "user-1"}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestUserFromContext_ReturnsErrorWhenAbsent(t *testing.T) {
	if _, err := UserFromContext(context.Background()); err == nil {
		t.Error("expected error for context without user")
	}
}
