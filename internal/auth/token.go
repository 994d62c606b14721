package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength はHS256署名鍵として受け付ける最小バイト数。
const MinSecretLength = 32

var (
	// ErrWeakSecret は署名鍵が未設定または短すぎることを表す。
	ErrWeakSecret = errors.New("token secret must be at least 32 bytes")
	// ErrInvalidToken はトークンの署名・形式・有効期限のいずれかが不正であることを表す。
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims はトークンに含めるクレーム。
// subにメールアドレス、nameに発行時点の表示名を格納する。
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenConfig はトークン署名の設定。
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// TokenCodec はHS256署名付きJWTの発行と検証を行う。
// 失効リストは持たず、署名鍵と有効期限のみで有効性を判定する。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
// 署名鍵が空または短すぎる場合、TTLが正でない場合はエラーを返す。
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", cfg.TTL)
	}
	return &TokenCodec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// Sign はsubjectと表示名からトークンを発行する。
func (c *TokenCodec) Sign(subject, name string) (string, error) {
	now := c.now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// HS256以外のアルゴリズム、exp欠落、発行者不一致はすべてErrInvalidTokenとなる。
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
