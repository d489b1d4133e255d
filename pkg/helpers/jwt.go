package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes carried in the "scope" claim so a refresh token can never be
// presented as an access token and a confirmation link can never log in.
const (
	ScopeAccess       = "access_token"
	ScopeRefresh      = "refresh_token"
	ScopeEmailConfirm = "email_confirm"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager handles generation and validation of the HS256 tokens used for
// API access, refresh rotation, and email confirmation.
type JWTManager struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ConfirmTTL time.Duration
}

func NewJWTManager(secret string, accessTTL, refreshTTL, confirmTTL time.Duration) *JWTManager {
	return &JWTManager{
		Secret:     []byte(secret),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		ConfirmTTL: confirmTTL,
	}
}

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID string) (string, time.Time, error) {
	return m.generate(userID, ScopeAccess, m.AccessTTL)
}

func (m *JWTManager) GenerateRefreshToken(userID string) (string, time.Time, error) {
	return m.generate(userID, ScopeRefresh, m.RefreshTTL)
}

// GenerateEmailToken issues the signed, time-bounded token embedded in
// confirmation links. Subject is the email address being proven.
func (m *JWTManager) GenerateEmailToken(email string) (string, time.Time, error) {
	return m.generate(email, ScopeEmailConfirm, m.ConfirmTTL)
}

func (m *JWTManager) generate(subject, scope string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// ParseAccessToken returns the user id carried by a valid access token.
func (m *JWTManager) ParseAccessToken(tokenStr string) (string, error) {
	return m.parse(tokenStr, ScopeAccess)
}

// ParseRefreshToken returns the user id carried by a valid refresh token.
func (m *JWTManager) ParseRefreshToken(tokenStr string) (string, error) {
	return m.parse(tokenStr, ScopeRefresh)
}

// ParseEmailToken returns the email address a confirmation token was issued
// for.
func (m *JWTManager) ParseEmailToken(tokenStr string) (string, error) {
	return m.parse(tokenStr, ScopeEmailConfirm)
}

func (m *JWTManager) parse(tokenStr, wantScope string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.Scope != wantScope || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
