package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, title, description, completed, user_id, created_at, updated_at`

// ListByUserID は指定ユーザーが所有するタスクをID昇順で返す。
func (r *PostgresTaskRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("タスクの読み取りに失敗しました: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タスク一覧の走査に失敗しました: %w", err)
	}

	return tasks, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	return task, nil
}

// Create はタスクを作成し、採番されたIDとタイムスタンプをtaskに設定する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, completed, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id`,
		task.Title, nullableString(task.Description), task.Completed, task.UserID, now,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// Update はタイトル、説明、完了状態を上書き更新する。
// 読み取りから書き込みまでロックしないため、同時更新は後勝ちとなる。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = $2, description = $3, completed = $4, updated_at = $5
		 WHERE id = $1`,
		task.ID, task.Title, nullableString(task.Description), task.Completed, now,
	)
	if err != nil {
		return fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, task.ID)
	}

	task.UpdatedAt = now
	return nil
}

// Delete は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask は1行分のタスクを読み取る。
func scanTask(s rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var description sql.NullString
	if err := s.Scan(
		&task.ID, &task.Title, &description, &task.Completed,
		&task.UserID, &task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	return task, nil
}

// nullableString は*stringをNULL許容の列値に変換する。
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
