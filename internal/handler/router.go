package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	IdentityResolver  middleware.IdentityResolver
	HTTPMetrics       middleware.HTTPMetricsRecorder
	MetricsGatherer   prometheus.Gatherer

	// ヘルスチェック
	Pinger repository.Pinger

	// 認証
	AuthService AuthServiceInterface

	// タスク
	TaskService TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS → Identity(タスクAPIのみ)
//
// RecoveryはRequestID・Logging・Metricsの内側に置く。panic由来の500もアクセスログとメトリクスに残る。
// 認証ルート（/api/auth/*）はIdentityミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	taskHandler := NewTaskHandler(deps.TaskService)

	// --- 稼働確認 ---
	r.Get("/", Root)
	r.Get("/health", NewHealthHandler(deps.Pinger))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証ルート ---
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/sign-out", authHandler.SignOut)
		r.Get("/session", authHandler.Session)
	})

	// --- タスクルート ---
	// 認証情報が無効でも拒否せず、デモユーザーとして処理する
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware(deps.IdentityResolver))

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Patch("/complete", taskHandler.CompleteTask)
			})
		})
	})

	return r
}
