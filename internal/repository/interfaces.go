// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/pizzauth/internal/model"
)

// ErrDuplicateEmail は一意制約によりメールアドレスの登録が拒否されたことを表す。
var ErrDuplicateEmail = errors.New("email already exists")

// ErrValueTooLong は列長の上限を超える値によりストアが登録を拒否したことを表す。
var ErrValueTooLong = errors.New("value too long for column")

// UserRepository はユーザーデータの永続化インターフェース。
// メールアドレスの一意性はストア側で原子的に保証する。
type UserRepository interface {
	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	// 値が列長を超える場合はErrValueTooLongを返す。
	Create(ctx context.Context, user *model.User) error
}
