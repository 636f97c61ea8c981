package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// MemoryUserRepo はプロセス内メモリにユーザーを保持するリポジトリ。
// 再起動すると内容は失われる。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Create はユーザーを作成する。存在確認と登録を同一ロック内で行う。
func (r *MemoryUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return ErrDuplicateUser
	}
	r.users[user.Email] = *user
	return nil
}

// PingContext は常に成功する。
func (r *MemoryUserRepo) PingContext(_ context.Context) error {
	return nil
}

// MemoryTaskRepo はプロセス内メモリにタスクを保持するリポジトリ。
// IDは1から順に採番する。
type MemoryTaskRepo struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]model.Task
}

// NewMemoryTaskRepo はMemoryTaskRepoを生成する。
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{
		nextID: 1,
		tasks:  make(map[int64]model.Task),
	}
}

// ListByUserID は指定ユーザーが所有するタスクをID昇順で返す。
func (r *MemoryTaskRepo) ListByUserID(_ context.Context, userID string) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == userID {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *MemoryTaskRepo) FindByID(_ context.Context, id int64) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return cloneTask(t), nil
}

// Create はタスクを作成し、採番されたIDとタイムスタンプをtaskに設定する。
func (r *MemoryTaskRepo) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	task.ID = r.nextID
	task.CreatedAt = now
	task.UpdatedAt = now
	r.nextID++

	r.tasks[task.ID] = *cloneTask(*task)
	return nil
}

// Update はタイトル、説明、完了状態を上書き更新する。所有者は保存済みの値を維持する。
func (r *MemoryTaskRepo) Update(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[task.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, task.ID)
	}

	stored.Title = task.Title
	stored.Description = cloneString(task.Description)
	stored.Completed = task.Completed
	stored.UpdatedAt = time.Now().UTC()
	r.tasks[task.ID] = stored

	task.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete は指定IDのタスクを削除する。
func (r *MemoryTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	delete(r.tasks, id)
	return nil
}

// PingContext は常に成功する。
func (r *MemoryTaskRepo) PingContext(_ context.Context) error {
	return nil
}

func cloneTask(t model.Task) *model.Task {
	t.Description = cloneString(t.Description)
	return &t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// compile-time interface check
var (
	_ UserRepository = (*MemoryUserRepo)(nil)
	_ TaskRepository = (*MemoryTaskRepo)(nil)
	_ Pinger         = (*MemoryTaskRepo)(nil)
)
