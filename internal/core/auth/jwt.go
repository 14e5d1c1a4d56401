package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"user-access-api/internal/domain"
)

// DefaultTTL 令牌有效期 1 天（cookie 只有 15 分钟，两者独立）
const DefaultTTL = 24 * time.Hour

var ErrMissingSecret = errors.New("jwt: signing secret is empty")

type Claims struct {
	UID   uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"` // "user" or "admin"
	jwt.RegisteredClaims
}

func (c *Claims) Identity() *domain.Identity {
	return &domain.Identity{ID: c.UID, Email: c.Email, Role: c.Role}
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now 测试用，默认 time.Now
	Now func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) ttl() time.Duration {
	if j.TTL > 0 {
		return j.TTL
	}
	return DefaultTTL
}

// Issue 签发；只有密钥配置错误才会失败
func (j *JWTer) Issue(id domain.Identity) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrMissingSecret
	}
	now := j.now()
	claims := Claims{
		UID:   id.ID,
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   fmt.Sprint(id.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

// Verify 签名错误、格式错误、过期统一返回 domain.ErrInvalidToken
func (j *JWTer) Verify(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == 0 {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}
