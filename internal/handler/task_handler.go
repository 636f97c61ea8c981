package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
// すべての操作は呼び出し元ユーザーが所有するタスクに限定される。
type TaskServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Task, error)
	Create(ctx context.Context, userID, title string, description *string) (*model.Task, error)
	Get(ctx context.Context, userID string, id int64) (*model.Task, error)
	Update(ctx context.Context, userID string, id int64, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID string, id int64) error
	Complete(ctx context.Context, userID string, id int64) (*model.Task, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// createTaskRequest はタスク作成リクエストのボディ。
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// updateTaskRequest はタスク更新リクエストのボディ。
// 省略またはnullのフィールドは変更しない。
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// taskResponse はタスクのAPIレスポンス。
type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListTasks は呼び出し元のタスク一覧を返す。
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context(), callerID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTask はタスクを作成する。
// POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidRequestBodyError())
		return
	}

	task, err := h.service.Create(r.Context(), callerID(r), req.Title, req.Description)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

// GetTask はタスクを1件返す。
// GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// UpdateTask は指定されたフィールドのみ更新する。
// PUT /api/tasks/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidRequestBodyError())
		return
	}

	task, err := h.service.Update(r.Context(), callerID(r), id, model.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// DeleteTask はタスクを削除する。
// DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), callerID(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask はタスクを完了にする。完了済みでも成功する。
// PATCH /api/tasks/{id}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Complete(r.Context(), callerID(r), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// --- ヘルパー関数 ---

// callerID はリクエストコンテキストから呼び出し元ユーザーIDを取得する。
// アイデンティティミドルウェアを経由しない場合はデモユーザーとして扱う。
func callerID(r *http.Request) string {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		return model.DemoUserID
	}
	return userID
}

// parseTaskID はURLパラメータのタスクIDを整数として解釈する。
// 失敗した場合は400を書き込みfalseを返す。
func parseTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidTaskIDError(raw))
		return 0, false
	}
	return id, true
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
