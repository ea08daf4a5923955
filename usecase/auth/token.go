package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/dhanadurga/backend/domain"
)

const (
	purposeAccess = "access"
	purposeReset  = "password_reset"
)

// TokenIssuer signs and verifies the service's JWTs. Access tokens carry
// sub=email and uid=user id; reset tokens are purpose-scoped and short
// lived.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	resetTTL  time.Duration
}

func NewTokenIssuer(secret, issuer string, accessTTL, resetTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
	}
}

func (t *TokenIssuer) Access(user *domain.User, now time.Time) (string, error) {
	return t.sign(user, purposeAccess, now, t.accessTTL)
}

func (t *TokenIssuer) Reset(user *domain.User, now time.Time) (string, error) {
	return t.sign(user, purposeReset, now, t.resetTTL)
}

func (t *TokenIssuer) sign(user *domain.User, purpose string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     user.Email,
		"uid":     user.ID,
		"purpose": purpose,
		"iss":     t.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyReset checks a password-reset token and returns the subject
// email. Access tokens are rejected here so a stolen session token
// cannot reset a password.
func (t *TokenIssuer) VerifyReset(raw string) (string, error) {
	claims, err := t.parse(raw)
	if err != nil {
		return "", err
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeReset {
		return "", domain.ErrUnauthorized
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", domain.ErrUnauthorized
	}
	return email, nil
}

func (t *TokenIssuer) parse(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
