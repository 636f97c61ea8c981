package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

// TestWriteErrorResponse_WritesUnifiedFormat は統一エラーフォーマットでレスポンスが書き込まれることを検証する。
func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

	WriteErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidInputError("タイトルは必須です"))

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", cc, "no-store")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != model.ErrCodeInvalidInput {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidInput)
	}
	if body.Message != "タイトルは必須です" {
		t.Errorf("message = %q, want %q", body.Message, "タイトルは必須です")
	}
	if body.Category == "" || body.Action == "" {
		t.Errorf("category and action should be set, got %+v", body)
	}
}

// TestWriteErrorResponse_IncludesRequestID はRequestIDミドルウェア経由ならrequest_idが含まれることを検証する。
func TestWriteErrorResponse_IncludesRequestID(t *testing.T) {
	handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorResponse(w, r, http.StatusNotFound, model.NewTaskNotFoundError())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/9", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.RequestID != "req-abc" {
		t.Errorf("request_id = %q, want %q", body.RequestID, "req-abc")
	}
	if body.Code != model.ErrCodeTaskNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeTaskNotFound)
	}
}

// TestWriteErrorResponse_OmitsEmptyRequestID はリクエストIDがなければフィールド自体を省略することを検証する。
func TestWriteErrorResponse_OmitsEmptyRequestID(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, nil, http.StatusUnauthorized, model.NewInvalidCredentialsError())

	var raw map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	for _, field := range []string{"code", "message", "category", "action"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing required field: %s", field)
		}
	}
	if _, ok := raw["request_id"]; ok {
		t.Error("request_id should be omitted when empty")
	}
}

// TestWriteInternalServerError_ReturnsSystemError は内部エラーが統一フォーマットで返ることを検証する。
func TestWriteInternalServerError_ReturnsSystemError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
	if body.Action == "" {
		t.Error("action should not be empty")
	}
}
