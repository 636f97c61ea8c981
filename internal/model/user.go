// Package model はドメインモデルを定義する。
package model

import "time"

// DemoUserID は有効な認証情報がないリクエストに割り当てる識別子。
const DemoUserID = "demo-user"

// User はサインアップ済みのユーザーを表す。
// メールアドレスがそのままユーザーIDとして使われる。
type User struct {
	Email     string
	Password  string
	CreatedAt time.Time
}

// ID はユーザーIDを返す。
func (u *User) ID() string {
	return u.Email
}

// Session はトークンから復元したログインセッションを表す。
// サーバー側には保持しない。
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
