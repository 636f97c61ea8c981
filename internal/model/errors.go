// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeTaskNotFound           = "TASK_NOT_FOUND"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewInvalidInputError は入力値エラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidTaskIDError はタスクIDが整数として解釈できない場合のエラーを生成する。
func NewInvalidTaskIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("無効なタスクIDです: %s", raw),
		Category: "validation",
		Action:   "タスクIDには整数を指定してください。",
	}
}

// NewInvalidRequestBodyError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワードの不一致エラーを生成する。
// 未登録とパスワード不一致は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度サインインしてください。",
	}
}

// NewEmailAlreadyRegisteredError は登録済みメールアドレスでのサインアップエラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "サインインするか、別のメールアドレスを使用してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 他ユーザーのタスクも存在しないものとして扱う。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  "指定されたタスクが見つかりません。",
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewInternalError は内部サーバーエラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
