package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, " + RequestIDHeader
	corsMaxAge       = "600"
)

// NewCORSMiddleware は単一の許可オリジンに対するCORSミドルウェアを返す。
// credentials送信と共存するため、ワイルドカード(*)は使わずOriginが一致した場合のみ許可ヘッダーを返す。
// プリフライトは許可オリジンなら204、それ以外は400で応答し、後続には渡さない。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			allowed := origin != "" && strings.EqualFold(origin, allowedOrigin)

			if isPreflight(r) {
				if !allowed {
					http.Error(w, "Disallowed CORS origin", http.StatusBadRequest)
					return
				}
				setAllowOrigin(w, allowedOrigin)
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed {
				setAllowOrigin(w, allowedOrigin)
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}

func setAllowOrigin(w http.ResponseWriter, origin string) {
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
}
