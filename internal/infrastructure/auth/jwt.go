package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid service token")
	ErrExpiredToken = errors.New("service token expired")
)

// Claims identifies the calling service. The issuer is the caller's
// service name and the audience is the service being called.
type Claims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies internal service tokens with a secret
// shared by the sibling services.
type JWTManager struct {
	secretKey     []byte
	service       string
	tokenDuration time.Duration
}

// NewJWTManager creates a manager for the named service.
func NewJWTManager(secretKey, service string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		service:       service,
		tokenDuration: tokenDuration,
	}
}

// Service returns the name this manager signs as.
func (m *JWTManager) Service() string {
	return m.service
}

// Generate signs a token for calling the audience service.
func (m *JWTManager) Generate(audience string) (string, error) {
	now := time.Now()
	claims := Claims{
		Service: m.service,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.service,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify checks a token presented to this service and returns its claims.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithAudience(m.service),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Service == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
