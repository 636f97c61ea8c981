package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/token"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockRecorder struct {
	events []string
}

func (m *mockRecorder) RecordAuthEvent(event, result string) {
	m.events = append(m.events, event+":"+result)
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ EventRecorder = (*mockRecorder)(nil)
var _ TokenCodec = (*token.Codec)(nil)

const testSecret = "auth-service-secret"

func newTestService(repo repository.UserRepository, rec EventRecorder) (*Service, *token.Codec) {
	codec := token.NewCodec(testSecret)
	return NewService(repo, codec, nil, rec), codec
}

// --- テスト ---

func TestSignUp_NewUser_StoresAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	rec := &mockRecorder{}
	svc, codec := newTestService(repository.NewMemoryUserRepo(), rec)

	result, err := svc.SignUp(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	if result.User.ID() != "a@x.com" || result.User.Email != "a@x.com" {
		t.Errorf("user = %+v, want id/email a@x.com", result.User)
	}
	if result.Session.Token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := codec.Verify(result.Session.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "a@x.com")
	}
	if len(rec.events) != 1 || rec.events[0] != "sign_up:success" {
		t.Errorf("events = %v, want [sign_up:success]", rec.events)
	}
}

func TestSignUp_DuplicateEmail_ReturnsConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(repository.NewMemoryUserRepo(), nil)

	if _, err := svc.SignUp(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("first SignUp() error = %v", err)
	}

	_, err := svc.SignUp(ctx, "a@x.com", "pw2")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeEmailAlreadyRegistered {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEmailAlreadyRegistered)
	}
}

func TestSignUp_RaceDetectedByStore_ReturnsConflict(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateUser
		},
	}
	svc, _ := newTestService(repo, nil)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailAlreadyRegistered {
		t.Errorf("SignUp() error = %v, want EMAIL_ALREADY_REGISTERED", err)
	}
}

func TestSignUp_StoreFailure_ReturnsWrappedError(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, storeErr
		},
	}
	svc, _ := newTestService(repo, nil)

	_, err := svc.SignUp(context.Background(), "a@x.com", "pw1")
	if !errors.Is(err, storeErr) {
		t.Errorf("SignUp() error = %v, want wrapped %v", err, storeErr)
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Error("store failure should not be an APIError")
	}
}

func TestSignIn_Scenarios(t *testing.T) {
	ctx := context.Background()
	rec := &mockRecorder{}
	svc, codec := newTestService(repository.NewMemoryUserRepo(), rec)

	if _, err := svc.SignUp(ctx, "a@x.com", "pw1"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	// パスワード不一致
	_, err := svc.SignIn(ctx, "a@x.com", "wrong")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("SignIn(wrong) error = %v, want UNAUTHORIZED", err)
	}

	// 未登録
	_, err = svc.SignIn(ctx, "nobody@x.com", "pw1")
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("SignIn(unknown) error = %v, want UNAUTHORIZED", err)
	}

	// 正しい資格情報
	result, err := svc.SignIn(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	claims, err := codec.Verify(result.Session.Token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "a@x.com" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "a@x.com")
	}

	want := []string{"sign_up:success", "sign_in:failure", "sign_in:failure", "sign_in:success"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, rec.events[i], want[i])
		}
	}
}

func TestSignOut_ReturnsMessage(t *testing.T) {
	svc, _ := newTestService(repository.NewMemoryUserRepo(), nil)

	if got := svc.SignOut(); got != SignOutMessage {
		t.Errorf("SignOut() = %q, want %q", got, SignOutMessage)
	}
}

func TestGetSession_ValidToken_ReturnsSession(t *testing.T) {
	svc, codec := newTestService(repository.NewMemoryUserRepo(), nil)
	raw, claims, _ := codec.Issue("a@x.com")

	session := svc.GetSession("Bearer " + raw)
	if session == nil {
		t.Fatal("expected non-nil session")
	}
	if session.UserID != "a@x.com" {
		t.Errorf("UserID = %q, want %q", session.UserID, "a@x.com")
	}
	if session.Token != raw {
		t.Errorf("Token = %q, want issued token", session.Token)
	}
	if !session.ExpiresAt.Equal(claims.ExpiresAt.Time) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, claims.ExpiresAt.Time)
	}
}

func TestGetSession_InvalidCredential_ReturnsNil(t *testing.T) {
	svc, codec := newTestService(repository.NewMemoryUserRepo(), nil)
	valid, _, _ := codec.Issue("a@x.com")
	expired, _, _ := codec.IssueWithTTL("a@x.com", -time.Minute)
	noSubject, _, _ := codec.Issue("")

	tests := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"no_space", valid},
		{"basic_scheme", "Basic " + valid},
		{"garbage", "Bearer garbage"},
		{"expired", "Bearer " + expired},
		{"empty_subject", "Bearer " + noSubject},
		{"extra_part", "Bearer " + valid + " extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.GetSession(tt.header); got != nil {
				t.Errorf("GetSession(%q) = %+v, want nil", tt.header, got)
			}
		})
	}
}

// GetSessionはタスクAPIと異なりデモユーザーにフォールバックしない
func TestGetSession_DoesNotFallBackToDemoUser(t *testing.T) {
	svc, codec := newTestService(repository.NewMemoryUserRepo(), nil)
	resolver := NewIdentityResolver(codec)

	header := "Bearer invalid"
	if got := resolver.Resolve(header); got != model.DemoUserID {
		t.Fatalf("Resolve() = %q, want %q", got, model.DemoUserID)
	}
	if got := svc.GetSession(header); got != nil {
		t.Errorf("GetSession() = %+v, want nil", got)
	}
}
