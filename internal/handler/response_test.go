package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/pizzauth/internal/model"
)

func TestHandleServiceError(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"該当アカウントなし", model.NewCredentialNotFoundError(), http.StatusNotFound, model.ErrCodeCredentialNotFound},
		{"重複登録", model.NewEmailInUseError(), http.StatusConflict, model.ErrCodeEmailInUse},
		{"ラップされた検証エラー", fmt.Errorf("register: %w", model.NewWeakPasswordError(8)), http.StatusBadRequest, model.ErrCodeWeakPassword},
		{"ストア障害", fmt.Errorf("failed to create user: %w", storeErr), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleServiceError(w, tt.err)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if strings.Contains(w.Body.String(), storeErr.Error()) {
				t.Error("internal error details must not leak into the response")
			}
			body := decodeErrorBody(t, w)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestToUserResponse(t *testing.T) {
	u := testUser()
	u.IsAdmin = true
	u.IsVerified = true

	got := toUserResponse(u)

	if got.ID != u.ID || got.Email != u.Email || got.Name != u.Name {
		t.Errorf("identity fields not copied: %+v", got)
	}
	if !got.Admin || !got.Verified {
		t.Errorf("flags not copied: %+v", got)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) || !got.UpdatedAt.Equal(u.UpdatedAt) {
		t.Errorf("timestamps not copied: %+v", got)
	}
}
