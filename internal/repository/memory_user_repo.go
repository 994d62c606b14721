package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/pizzauth/internal/model"
)

// MemoryUserRepo はプロセス内メモリにユーザーを保持するリポジトリ。
// DBなしでの起動（serve --in-memory）とテストで使用する。
type MemoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]model.User)}
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
// 呼び出し側による変更が保持データに影響しないようコピーを返す。
func (r *MemoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Create はユーザーを作成する。存在確認と挿入はロック内で一括して行う。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}
	r.byEmail[user.Email] = *user
	return nil
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
