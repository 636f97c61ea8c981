package auth

import (
	"strings"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/token"
)

// TokenVerifier はトークン検証のインターフェース。
// token.Codecが実装する。
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// IdentityResolver はAuthorizationヘッダーから呼び出し元のユーザーIDを導出する。
// 認証情報が無い、または検証できない場合は常にデモユーザーとして扱う。
type IdentityResolver struct {
	verifier TokenVerifier
}

// NewIdentityResolver はIdentityResolverを生成する。
func NewIdentityResolver(verifier TokenVerifier) *IdentityResolver {
	return &IdentityResolver{verifier: verifier}
}

// Resolve はAuthorizationヘッダー値からユーザーIDを返す。失敗しない。
//
// 次のいずれかに該当する場合はmodel.DemoUserIDを返す:
//   - ヘッダーが空
//   - 半角スペース1つで区切られた2要素になっていない
//   - スキームがbearer（大文字小文字を区別しない）ではない
//   - トークンの検証に失敗した、またはsubjectが空
func (r *IdentityResolver) Resolve(authorization string) string {
	if authorization == "" {
		return model.DemoUserID
	}

	parts := strings.Split(authorization, " ")
	if len(parts) != 2 {
		return model.DemoUserID
	}
	scheme, raw := parts[0], parts[1]
	if !strings.EqualFold(scheme, "bearer") {
		return model.DemoUserID
	}

	claims, err := r.verifier.Verify(raw)
	if err != nil || claims.Subject == "" {
		return model.DemoUserID
	}

	return claims.Subject
}
