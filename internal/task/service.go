// Package task はユーザーごとに分離されたタスク操作を提供する。
// すべての操作は呼び出し元ユーザーが所有するタスクに限定され、
// 他ユーザーのタスクは存在しないものとして扱う。
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// OperationRecorder はタスク操作の記録インターフェース。
type OperationRecorder interface {
	RecordTaskOperation(op string)
}

// Service はタスク操作のビジネスロジックを提供する。
type Service struct {
	repo     repository.TaskRepository
	recorder OperationRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.TaskRepository, recorder OperationRecorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// List は呼び出し元が所有するタスクを作成順に返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	s.record("list")
	return tasks, nil
}

// Create は呼び出し元を所有者とする未完了のタスクを作成する。
// タイトルが空の場合はINVALID_INPUTエラーを返す。
func (s *Service) Create(ctx context.Context, userID, title string, description *string) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewInvalidInputError("タイトルは必須です")
	}

	t := &model.Task{
		Title:       title,
		Description: description,
		Completed:   false,
		UserID:      userID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	s.record("create")
	slog.Info("task created",
		slog.String("user_id", userID),
		slog.Int64("task_id", t.ID),
	)
	return t, nil
}

// Get は呼び出し元が所有するタスクを返す。
func (s *Service) Get(ctx context.Context, userID string, id int64) (*model.Task, error) {
	t, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.record("get")
	return t, nil
}

// Update は指定されたフィールドのみを更新する。
// タイトルを空文字に変更しようとした場合はINVALID_INPUTエラーを返す。
func (s *Service) Update(ctx context.Context, userID string, id int64, patch model.TaskPatch) (*model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, model.NewInvalidInputError("タイトルを空にすることはできません")
	}

	t, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(t)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, writeError("タスクの更新に失敗しました", err)
	}

	s.record("update")
	return t, nil
}

// Delete は呼び出し元が所有するタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError("タスクの削除に失敗しました", err)
	}

	s.record("delete")
	slog.Info("task deleted",
		slog.String("user_id", userID),
		slog.Int64("task_id", id),
	)
	return nil
}

// Complete はタスクを完了状態にする。完了済みでもエラーにならない。
func (s *Service) Complete(ctx context.Context, userID string, id int64) (*model.Task, error) {
	t, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	t.Completed = true
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, writeError("タスクの完了に失敗しました", err)
	}

	s.record("complete")
	return t, nil
}

// findOwned はタスクを取得し、所有者が一致しない場合は未検出として扱う。
func (s *Service) findOwned(ctx context.Context, userID string, id int64) (*model.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if t == nil || t.UserID != userID {
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

// writeError は書き込み失敗を変換する。
// findOwnedの後に別リクエストで削除された場合も未検出として返す。
func writeError(msg string, err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return model.NewTaskNotFoundError()
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Service) record(op string) {
	if s.recorder != nil {
		s.recorder.RecordTaskOperation(op)
	}
}
