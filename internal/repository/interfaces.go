// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrDuplicateUser はメールアドレスが既に登録されている場合に返される。
var ErrDuplicateUser = errors.New("user already exists")

// ErrTaskNotFound は更新・削除対象のタスクが存在しない場合に返される。
var ErrTaskNotFound = errors.New("task not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// 同じメールアドレスが既に存在する場合はErrDuplicateUserを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// ListByUserID は指定ユーザーが所有するタスクをID昇順で返す。
	// 該当がない場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Task, error)

	// FindByID は指定IDのタスクを所有者に関係なく取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Task, error)

	// Create はタスクを作成し、採番されたIDとタイムスタンプをtaskに設定する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタイトル、説明、完了状態を上書き更新する。所有者は変更しない。
	// 対象が存在しない場合はErrTaskNotFoundを返す。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。対象が存在しない場合はErrTaskNotFoundを返す。
	Delete(ctx context.Context, id int64) error
}

// Pinger は永続化層の疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}
