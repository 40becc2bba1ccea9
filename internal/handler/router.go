package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wildlifesos/inventory360/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	APILimiter        middleware.ClientLimiter
	LoginLimiter      *middleware.LoginRateLimiter
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// メトリクス（nil可）
	HTTPMetrics      middleware.HTTPMetricsRecorder
	RateLimitMetrics middleware.RateLimitRecorder
	AssetMetrics     AssetMetricsRecorder
	MetricsHandler   http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 資産
	AssetService AssetServiceInterface

	// 読み取り系エンドポイントにも認証を要求するか
	RequireAuthForRead bool

	// ヘルスチェック
	DB DBPinger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging
//
// /api配下はさらに RateLimit → SessionResolver → CSRF を通す。
// レート制限は認証より先に判定し、拒否されたリクエストはボディを読まない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	assetHandler := NewAssetHandler(deps.AssetService, deps.AssetMetrics)

	// --- 認証ルート（OAuthフロー） ---
	r.Route("/auth", func(r chi.Router) {
		// ログイン開始はIdP保護のため専用レート制限をかける
		r.With(deps.LoginLimiter.Middleware()).Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- APIルート ---
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewRateLimitMiddleware(deps.APILimiter, deps.RateLimitMetrics))
		r.Use(middleware.NewSessionResolver(deps.SessionFinder, deps.UserFinder))

		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// 読み取り系。RequireAuthForReadが有効な場合のみ認証必須。
		r.Group(func(r chi.Router) {
			if deps.RequireAuthForRead {
				r.Use(middleware.RequireUser())
			}
			r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
			r.Get("/asset", assetHandler.ListAssets)
			r.Get("/asset/export", assetHandler.ExportAssets)
			r.Get("/sites", assetHandler.ListSites)
		})

		// 書き込み系は常に認証必須。未認証は401で返すため、CSRF検証より先に判定する。
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser())
			r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
			r.Post("/asset", assetHandler.CreateAsset)
			r.Put("/asset", assetHandler.UpdateAsset)
		})
	})

	// --- 運用ルート ---
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
