// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hitoshi/pizzauth/internal/auth"
	"github.com/hitoshi/pizzauth/internal/model"
)

const bearerScheme = "Bearer"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	claimsContextKey = contextKey("claims")
	tokenContextKey  = contextKey("token")
)

// TokenVerifier はトークン検証に必要なインターフェース。
// 空文字が渡された場合もエラーを返すこと。
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// 検証に成功した場合はクレームとトークンをリクエストコンテキストに注入する。
// トークンが無い、または無効な場合は401を返し、後続のハンドラーを実行しない。
// ストアへの問い合わせは行わない。
func NewBearerAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearerToken(r.Header.Get("Authorization"))

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				WriteAPIError(w, model.NewInvalidSessionError())
				return
			}

			recordSubject(r.Context(), claims.Subject)

			ctx := ContextWithClaims(r.Context(), claims)
			ctx = ContextWithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken はAuthorizationヘッダー値からトークンを取り出す。
// スキームは大文字小文字を区別して"Bearer"のみ受け付け、条件を満たさない場合は空文字を返す。
func ExtractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != bearerScheme {
		return ""
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}

// ClaimsFromContext はリクエストコンテキストからクレームを取得する。
// Bearer認証ミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// TokenFromContext はリクエストコンテキストから検証済みトークンを取得する。
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

// ContextWithClaims はコンテキストにクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ContextWithToken はコンテキストにトークンを注入する。
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}
