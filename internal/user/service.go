// Package user はログイン中ユーザーの参照を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/pizzauth/internal/model"
)

// UserFinder はメールアドレスでユーザーを検索するインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Service はユーザー参照のサービス層。
type Service struct {
	users UserFinder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users UserFinder) *Service {
	return &Service{users: users}
}

// CurrentUser はトークンのsubject（メールアドレス）から最新のユーザーレコードを取得する。
// トークン発行後にレコードが存在しなくなった場合はInvalidSessionエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		slog.Warn("token subject no longer exists")
		return nil, model.NewInvalidSessionError()
	}
	return user, nil
}
