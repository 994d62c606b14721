// Package model はドメインモデルを定義する。
package model

import "time"

// User は登録済みアカウントを表す。
// Emailが唯一の検索キーであり、作成後は変更されない。
type User struct {
	ID             string
	Email          string
	PasswordDigest string // bcryptダイジェスト。平文は保持しない
	Name           string
	IsAdmin        bool
	IsVerified     bool // 現状どのフローからも参照されない
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
