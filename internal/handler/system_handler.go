package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/taskman/internal/repository"
)

// RootMessage はGET /で返すメッセージ。
const RootMessage = "Todo Backend Running!"

const healthCheckTimeout = 2 * time.Second

// Root は稼働確認用のメッセージを返す。
// GET /
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

// NewHealthHandler はストアへの疎通を確認するヘルスチェックハンドラーを返す。
// 疎通できない場合は503を返す。
// GET /health
func NewHealthHandler(pinger repository.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := pinger.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
