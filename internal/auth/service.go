// Package auth はサインアップ・サインインとBearerトークンからの本人特定を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/token"
)

// SignOutMessage はサインアウト時に返すメッセージ。
const SignOutMessage = "Signed out successfully"

// TokenIssuer はトークン発行のインターフェース。
type TokenIssuer interface {
	Issue(subject string) (string, *token.Claims, error)
}

// TokenCodec はトークンの発行と検証を行う。
type TokenCodec interface {
	TokenIssuer
	TokenVerifier
}

// EventRecorder は認証イベントの記録インターフェース。
// metrics.Collectorが実装する。
type EventRecorder interface {
	RecordAuthEvent(event, result string)
}

// Result はサインアップ・サインインの結果を表す。
type Result struct {
	User    *model.User
	Session *model.Session
}

// Service はユーザーディレクトリの操作を提供する。
type Service struct {
	userRepo repository.UserRepository
	codec    TokenCodec
	verifier CredentialVerifier
	recorder EventRecorder
}

// NewService はServiceを生成する。
// verifierがnilの場合はPlaintextVerifierを使用する。
func NewService(
	userRepo repository.UserRepository,
	codec TokenCodec,
	verifier CredentialVerifier,
	recorder EventRecorder,
) *Service {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &Service{
		userRepo: userRepo,
		codec:    codec,
		verifier: verifier,
		recorder: recorder,
	}
}

// SignUp はユーザーを登録し、メールアドレスをsubjectとするトークンを発行する。
// 登録済みのメールアドレスの場合はEMAIL_ALREADY_REGISTEREDエラーを返す。
func (s *Service) SignUp(ctx context.Context, email, password string) (*Result, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		s.record("sign_up", "conflict")
		return nil, model.NewEmailAlreadyRegisteredError()
	}

	stored, err := s.verifier.Prepare(password)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credential: %w", err)
	}

	user := &model.User{
		Email:     email,
		Password:  stored,
		CreatedAt: time.Now().UTC(),
	}

	// 事前確認と登録の間に同じメールアドレスが登録された場合もここで検出する
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			s.record("sign_up", "conflict")
			return nil, model.NewEmailAlreadyRegisteredError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record("sign_up", "success")
	slog.Info("user signed up", slog.String("user_id", user.ID()))
	return result, nil
}

// SignIn はメールアドレスとパスワードを照合し、新しいトークンを発行する。
// 未登録またはパスワード不一致の場合はUNAUTHORIZEDエラーを返す。
func (s *Service) SignIn(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.verifier.Matches(user.Password, password) {
		s.record("sign_in", "failure")
		slog.Warn("sign in rejected", slog.String("email", email))
		return nil, model.NewInvalidCredentialsError()
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.record("sign_in", "success")
	slog.Info("user signed in", slog.String("user_id", user.ID()))
	return result, nil
}

// SignOut はサインアウトを受け付ける。
// サーバー側にセッションを持たないため、発行済みトークンは期限まで有効なままとなる。
func (s *Service) SignOut() string {
	s.record("sign_out", "success")
	return SignOutMessage
}

// GetSession はAuthorization値からセッションを復元する。
// タスクAPIと異なりデモユーザーへのフォールバックは行わず、
// 認証情報が無い・解析できない・検証できない場合はnilを返す。
func (s *Service) GetSession(authorization string) *model.Session {
	if authorization == "" {
		return nil
	}

	scheme, raw, ok := strings.Cut(authorization, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return nil
	}

	claims, err := s.codec.Verify(raw)
	if err != nil || claims.Subject == "" {
		return nil
	}

	session := &model.Session{
		Token:  raw,
		UserID: claims.Subject,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session
}

// issue はユーザーのトークンを発行しResultを組み立てる。
func (s *Service) issue(user *model.User) (*Result, error) {
	raw, claims, err := s.codec.Issue(user.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Result{
		User: user,
		Session: &model.Session{
			Token:     raw,
			UserID:    user.ID(),
			ExpiresAt: claims.ExpiresAt.Time,
		},
	}, nil
}

func (s *Service) record(event, result string) {
	if s.recorder != nil {
		s.recorder.RecordAuthEvent(event, result)
	}
}
