package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hitoshi/pizzauth/internal/model"
)

func TestMemoryUserRepo_FindByEmail_NotFound_ReturnsNil(t *testing.T) {
	repo := NewMemoryUserRepo()

	got, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil user, got %+v", got)
	}
}

func TestMemoryUserRepo_CreateThenFind(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{ID: "u1", Email: "alice@example.com", Name: "Alice"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got == nil || got.ID != "u1" || got.Name != "Alice" {
		t.Errorf("unexpected user: %+v", got)
	}

	// 返却値の変更が保持データに影響しないこと
	got.Name = "Mallory"
	again, _ := repo.FindByEmail(ctx, "alice@example.com")
	if again.Name != "Alice" {
		t.Errorf("stored name mutated to %q", again.Name)
	}
}

func TestMemoryUserRepo_Create_Duplicate(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{ID: "u1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	err := repo.Create(ctx, &model.User{ID: "u2", Email: "alice@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestMemoryUserRepo_Create_ConcurrentSameEmail_OneWins(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, &model.User{ID: fmt.Sprintf("u%d", i), Email: "race@example.com"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateEmail):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successes = %d, want 1", successes)
	}
	if dupes != workers-1 {
		t.Errorf("duplicates = %d, want %d", dupes, workers-1)
	}
}

func TestMemoryUserRepo_CanceledContext(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.FindByEmail(ctx, "a@example.com"); !errors.Is(err, context.Canceled) {
		t.Errorf("FindByEmail err = %v, want context.Canceled", err)
	}
	if err := repo.Create(ctx, &model.User{Email: "a@example.com"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Create err = %v, want context.Canceled", err)
	}
}
