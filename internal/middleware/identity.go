// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// IdentityResolver はAuthorizationヘッダーから呼び出し元ユーザーを決定する。
// auth.IdentityResolverが実装する。
type IdentityResolver interface {
	Resolve(authorization string) string
}

// NewIdentityMiddleware はAuthorizationヘッダーから呼び出し元を解決し、
// ユーザーIDをリクエストコンテキストに注入するミドルウェアを返す。
// 解決は失敗しないため、認証情報がなくてもリクエストは拒否されず
// デモユーザーとして処理される。
func NewIdentityMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := resolver.Resolve(r.Header.Get("Authorization"))
			ctx := ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// アイデンティティミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// 外側のロギングミドルウェアが参照できるよう、リクエスト情報にも記録する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if info := requestInfoFromContext(ctx); info != nil {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDContextKey, userID)
}
