package auth

import "crypto/subtle"

// CredentialVerifier は保存済みパスワードと入力値の照合を抽象化する。
// ハッシュ照合の実装に差し替えても呼び出し側は変更不要。
type CredentialVerifier interface {
	// Prepare は保存用のパスワード表現を返す。
	Prepare(password string) (string, error)
	// Matches は保存済みの表現と入力値が一致するかを返す。
	Matches(stored, password string) bool
}

// PlaintextVerifier は平文のまま保存し、完全一致で照合する。
type PlaintextVerifier struct{}

// Prepare は入力値をそのまま返す。
func (PlaintextVerifier) Prepare(password string) (string, error) {
	return password, nil
}

// Matches は完全一致を定数時間で比較する。
func (PlaintextVerifier) Matches(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

var _ CredentialVerifier = PlaintextVerifier{}
