// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/taskman/internal/auth"
	"github.com/hitoshi/taskman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password string) (*auth.Result, error)
	SignIn(ctx context.Context, email, password string) (*auth.Result, error)
	SignOut() string
	GetSession(authorization string) *model.Session
}

// AuthHandler はサインアップ・サインイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// credentialsRequest はサインアップ・サインインリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。IDはメールアドレスと同じ値になる。
type userResponse struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

// sessionResponse はセッション情報のAPIレスポンス。
type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// authResponse はサインアップ・サインインのAPIレスポンス。
type authResponse struct {
	User    userResponse    `json:"user"`
	Token   string          `json:"token"`
	Session sessionResponse `json:"session"`
}

// SignUp はユーザーを登録する。
// POST /api/auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.service.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

// SignIn はサインインしトークンを発行する。
// POST /api/auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// SignOut はサインアウトを受け付ける。
// POST /api/auth/sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": h.service.SignOut()})
}

// Session は認証情報からセッションを復元して返す。復元できない場合はnullを返す。
// 認証情報はAuthorizationヘッダー、なければクエリパラメータauthorizationから読む。
// GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		authorization = r.URL.Query().Get("authorization")
	}

	body := map[string]*sessionResponse{"session": nil}
	if session := h.service.GetSession(authorization); session != nil {
		body["session"] = &sessionResponse{
			Token: session.Token,
			User:  userResponse{Email: session.UserID, ID: session.UserID},
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// --- ヘルパー関数 ---

// decodeCredentials はメールアドレスとパスワードを読み取る。
// どちらかが空の場合は400を書き込みfalseを返す。
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidRequestBodyError())
		return req, false
	}
	if strings.TrimSpace(req.Email) == "" {
		writeAPIErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidInputError("メールアドレスが空です"))
		return req, false
	}
	if req.Password == "" {
		writeAPIErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidInputError("パスワードが空です"))
		return req, false
	}
	return req, true
}

// toAuthResponse はauth.ResultからAPIレスポンスに変換する。
func toAuthResponse(result *auth.Result) authResponse {
	user := userResponse{Email: result.User.Email, ID: result.User.ID()}
	return authResponse{
		User:  user,
		Token: result.Session.Token,
		Session: sessionResponse{
			Token: result.Session.Token,
			User:  user,
		},
	}
}
