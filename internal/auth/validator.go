package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/pizzauth/internal/model"
)

// bcryptは先頭72バイトのみをハッシュ対象とするため、それを超えるパスワードは受け付けない。
const maxPasswordBytes = 72

// usersテーブルの列長 (email VARCHAR(320), name VARCHAR(255)) に合わせた上限。
const (
	MaxEmailLength = 320
	MaxNameLength  = 255
)

// PasswordPolicy はパスワード強度の基準。
type PasswordPolicy struct {
	MinLength    int
	MinLowercase int
	MinUppercase int
	MinDigits    int
	MinSymbols   int
}

// DefaultPasswordPolicy は8文字以上、英小文字・英大文字・数字・記号を各1文字以上とする基準を返す。
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:    8,
		MinLowercase: 1,
		MinUppercase: 1,
		MinDigits:    1,
		MinSymbols:   1,
	}
}

// Satisfied はパスワードが基準を満たすかを返す。
// 文字種はASCIIのみで数える。英字以外のASCII文字は記号、非ASCII文字は長さにのみ数える。
func (p PasswordPolicy) Satisfied(password string) bool {
	if len(password) > maxPasswordBytes {
		return false
	}
	if utf8.RuneCountInString(password) < p.MinLength {
		return false
	}

	var lower, upper, digits, symbols int
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower++
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= '0' && r <= '9':
			digits++
		case r < utf8.RuneSelf:
			symbols++
		}
	}

	return lower >= p.MinLowercase &&
		upper >= p.MinUppercase &&
		digits >= p.MinDigits &&
		symbols >= p.MinSymbols
}

// RegisterRequest は新規登録の入力。
type RegisterRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegistrationValidator は新規登録の入力を検証する。
type RegistrationValidator struct {
	policy   PasswordPolicy
	validate *validator.Validate
}

// NewRegistrationValidator はRegistrationValidatorを生成する。
func NewRegistrationValidator(policy PasswordPolicy) *RegistrationValidator {
	return &RegistrationValidator{
		policy:   policy,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate は以下の順に検証し、最初に失敗した項目のエラーのみを返す。
//
//	確認用パスワード一致 → メールアドレス形式 → パスワード強度 → 名前の有無
//
// 長さの上限はそれぞれメールアドレス形式と名前の段で検査する。
func (v *RegistrationValidator) Validate(req RegisterRequest) error {
	if req.Password != req.ConfirmPassword {
		return model.NewPasswordMismatchError()
	}
	if err := v.validate.Var(req.Email, emailRule); err != nil {
		return model.NewInvalidEmailError()
	}
	if !v.policy.Satisfied(req.Password) {
		return model.NewWeakPasswordError(v.policy.MinLength)
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.NewMissingNameError()
	}
	if err := v.validate.Var(req.Name, nameRule); err != nil {
		return model.NewNameTooLongError(MaxNameLength)
	}
	return nil
}

var (
	emailRule = fmt.Sprintf("required,max=%d,email", MaxEmailLength)
	nameRule  = fmt.Sprintf("max=%d", MaxNameLength)
)
