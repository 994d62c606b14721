// Package model はドメインモデルを定義する。
package model

import "fmt"

// ErrorKind はトランスポート非依存のエラー分類を表す。
// HTTPステータスへの変換はハンドラー層で行う。
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindBadRequest   ErrorKind = "bad_request"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Kind     ErrorKind // エラー分類
	Code     string    // エラーコード
	Message  string    // エラーメッセージ
	Category string    // カテゴリ: auth, validation, system
	Action   string    // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeCredentialNotFound = "CREDENTIAL_NOT_FOUND"
	ErrCodeBadCredential      = "BAD_CREDENTIAL"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeInvalidEmail       = "INVALID_EMAIL"
	ErrCodeWeakPassword       = "WEAK_PASSWORD"
	ErrCodeMissingName        = "MISSING_NAME"
	ErrCodeNameTooLong        = "NAME_TOO_LONG"
	ErrCodeEmailInUse         = "EMAIL_IN_USE"
	ErrCodeInvalidSession     = "INVALID_SESSION"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewCredentialNotFoundError はメールアドレスに該当するアカウントが存在しない場合のエラーを生成する。
// アカウントの存在有無を推測されないよう、メッセージは汎用的にする。
func NewCredentialNotFoundError() *APIError {
	return &APIError{
		Kind:     KindNotFound,
		Code:     ErrCodeCredentialNotFound,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewBadCredentialError はパスワード不一致のエラーを生成する。
func NewBadCredentialError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeBadCredential,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewPasswordMismatchError は確認用パスワードが一致しない場合のエラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodePasswordMismatch,
		Message:  "パスワードと確認用パスワードが一致しません。",
		Category: "validation",
		Action:   "同じパスワードを2回入力してください。",
	}
}

// NewInvalidEmailError はメールアドレス形式が不正な場合のエラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "有効なメールアドレスを入力してください。",
	}
}

// NewWeakPasswordError はパスワード強度が不足している場合のエラーを生成する。
func NewWeakPasswordError(minLength int) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeWeakPassword,
		Message:  "パスワードの強度が不足しています。",
		Category: "validation",
		Action:   fmt.Sprintf("%d文字以上で、大文字・小文字・数字・記号をそれぞれ1文字以上含めてください。", minLength),
	}
}

// NewMissingNameError は表示名が未入力の場合のエラーを生成する。
func NewMissingNameError() *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeMissingName,
		Message:  "名前が入力されていません。",
		Category: "validation",
		Action:   "名前を入力してください。",
	}
}

// NewNameTooLongError は表示名が上限文字数を超えている場合のエラーを生成する。
func NewNameTooLongError(maxLength int) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeNameTooLong,
		Message:  "名前が長すぎます。",
		Category: "validation",
		Action:   fmt.Sprintf("%d文字以内で入力してください。", maxLength),
	}
}

// NewEmailInUseError はメールアドレスが既に登録済みの場合のエラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Kind:     KindConflict,
		Code:     ErrCodeEmailInUse,
		Message:  "このメールアドレスは既に使用されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidSessionError はトークンが無効または期限切れの場合のエラーを生成する。
func NewInvalidSessionError() *APIError {
	return &APIError{
		Kind:     KindUnauthorized,
		Code:     ErrCodeInvalidSession,
		Message:  "invalid or expired session",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidRequestError はリクエストボディが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Kind:     KindBadRequest,
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Kind:     KindInternal,
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
