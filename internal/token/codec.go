// Package token は署名付きの本人確認トークンの発行と検証を提供する。
// HS256で署名したJWTを使用し、subjectにユーザーIDを格納する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL はトークンのデフォルト有効期間（7日）。
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken はトークンが検証できなかったことを表す。
// 形式不正、署名不一致、期限切れのいずれもこのエラーでラップされる。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに格納するクレーム。
type Claims struct {
	jwt.RegisteredClaims
}

// Codec は共有シークレットでトークンを発行・検証する。
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option はCodecの設定を変更する。
type Option func(*Codec)

// WithTTL はIssueで使うデフォルトの有効期間を設定する。
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec はCodecを生成する。
func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue はsubjectを格納したトークンをデフォルトの有効期間で発行する。
func (c *Codec) Issue(subject string) (string, *Claims, error) {
	return c.IssueWithTTL(subject, c.ttl)
}

// IssueWithTTL はsubjectを格納したトークンを指定の有効期間で発行する。
// issuedAtは現在時刻、expiresAtはissuedAt+ttlとなる。
func (c *Codec) IssueWithTTL(subject string, ttl time.Duration) (string, *Claims, error) {
	issuedAt := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify は署名と有効期限を検証し、クレームを返す。
// 検証に失敗した場合はErrInvalidTokenをラップしたエラーを返す。
// subjectの有無は検証しない。
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
