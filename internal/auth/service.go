// Package auth はパスワード認証、新規登録、トークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/pizzauth/internal/model"
	"github.com/hitoshi/pizzauth/internal/repository"
)

// TokenProvider はトークンの発行と検証を行うインターフェース。
type TokenProvider interface {
	Sign(subject, name string) (string, error)
	Verify(token string) (*Claims, error)
}

// MetricsRecorder は認証結果を記録するインターフェース。
type MetricsRecorder interface {
	RecordSignIn(outcome string)
	RecordRegister(outcome string)
	RecordTokenVerify(outcome string)
}

// 認証結果のラベル
const (
	OutcomeSuccess       = "success"
	OutcomeNotFound      = "not_found"
	OutcomeBadCredential = "bad_credential"
	OutcomeInvalid       = "invalid"
	OutcomeConflict      = "conflict"
	OutcomeError         = "error"
	OutcomeValid         = "valid"
	OutcomeAbsent        = "absent"
)

type noopRecorder struct{}

func (noopRecorder) RecordSignIn(string)      {}
func (noopRecorder) RecordRegister(string)    {}
func (noopRecorder) RecordTokenVerify(string) {}

// SignInResult はサインイン成功時の結果。
type SignInResult struct {
	Token string
	User  *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenProvider
	validator *RegistrationValidator
	metrics   MetricsRecorder
	now       func() time.Time
	newID     func() string
}

// NewService はServiceを生成する。recorderがnilの場合は記録しない。
func NewService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenProvider,
	validator *RegistrationValidator,
	recorder MetricsRecorder,
) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		metrics:   recorder,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SignIn はメールアドレスとパスワードを照合し、トークンを発行する。
// 未登録のメールアドレスはNotFound、パスワード不一致はUnauthorizedとなる。
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.metrics.RecordSignIn(OutcomeError)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.metrics.RecordSignIn(OutcomeNotFound)
		slog.Warn("sign-in failed", slog.String("reason", OutcomeNotFound))
		return nil, model.NewCredentialNotFoundError()
	}

	ok, err := s.hasher.Verify(password, user.PasswordDigest)
	if err != nil {
		s.metrics.RecordSignIn(OutcomeError)
		return nil, fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		s.metrics.RecordSignIn(OutcomeBadCredential)
		slog.Warn("sign-in failed",
			slog.String("reason", OutcomeBadCredential),
			slog.String("user_id", user.ID),
		)
		return nil, model.NewBadCredentialError()
	}

	token, err := s.tokens.Sign(user.Email, user.Name)
	if err != nil {
		s.metrics.RecordSignIn(OutcomeError)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordSignIn(OutcomeSuccess)
	slog.Info("user signed in", slog.String("user_id", user.ID))

	return &SignInResult{Token: token, User: user}, nil
}

// Register は入力を検証し、新しいユーザーを作成する。トークンは発行しない。
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if err := s.validator.Validate(req); err != nil {
		s.metrics.RecordRegister(OutcomeInvalid)
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.RecordRegister(OutcomeError)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		s.metrics.RecordRegister(OutcomeConflict)
		return nil, model.NewEmailInUseError()
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.RecordRegister(OutcomeError)
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:             s.newID(),
		Email:          req.Email,
		PasswordDigest: digest,
		Name:           req.Name,
		IsAdmin:        false,
		IsVerified:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// 存在確認と挿入の間に同じメールアドレスが登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.metrics.RecordRegister(OutcomeConflict)
			return nil, model.NewEmailInUseError()
		}
		if errors.Is(err, repository.ErrValueTooLong) {
			s.metrics.RecordRegister(OutcomeInvalid)
			return nil, model.NewInvalidRequestError("入力値が長すぎます")
		}
		s.metrics.RecordRegister(OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordRegister(OutcomeSuccess)
	slog.Info("user registered", slog.String("user_id", user.ID))

	return user, nil
}

// VerifyToken はトークンを検証してクレームを返す。ストアは参照しない。
// 空文字・署名不正・期限切れはいずれもInvalidSessionエラーとなる。
func (s *Service) VerifyToken(token string) (*Claims, error) {
	if token == "" {
		s.metrics.RecordTokenVerify(OutcomeAbsent)
		return nil, model.NewInvalidSessionError()
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.RecordTokenVerify(OutcomeInvalid)
		slog.Debug("token rejected", slog.String("error", err.Error()))
		return nil, model.NewInvalidSessionError()
	}

	s.metrics.RecordTokenVerify(OutcomeValid)
	return claims, nil
}
