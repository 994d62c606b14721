package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/pizzauth/internal/middleware"
	"github.com/hitoshi/pizzauth/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// CurrentUser はトークンのsubjectから最新のユーザーレコードを取得する。
	CurrentUser(ctx context.Context, email string) (*model.User, error)
}

// UserHandler はログイン中ユーザーのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// LoginToken は提示されたトークンとログイン中ユーザーの情報を返す。
// Bearer認証ミドルウェアの内側で使用する。
// GET /auth/login-token
func (h *UserHandler) LoginToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		middleware.WriteAPIError(w, model.NewInvalidSessionError())
		return
	}
	token, _ := middleware.TokenFromContext(r.Context())

	user, err := h.service.CurrentUser(r.Context(), claims.Subject)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}
