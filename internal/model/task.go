package model

import "time"

// Task はユーザーが所有するタスクを表す。
// UserIDは作成時に一度だけ設定され、以後変更されない。
type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch はタスクの部分更新内容を表す。
// nilのフィールドは変更しない。
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply は指定されたフィールドのみをタスクに反映する。
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
