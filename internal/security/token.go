package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid security token")

// Action names tokens are scoped to
const (
	ActionBulkEmail = "ml_bulk_email_action"
	ActionExport    = "ml_export_action"
)

// SubscriptionAction scopes a form token to one list.
func SubscriptionAction(listID uint) string {
	return fmt.Sprintf("ml_subscription_%d", listID)
}

type tokenClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and verifies opaque action-scoped CSRF tokens.
// A token is bound to its action and to the subject (user id, or empty for anonymous forms).
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (t *TokenIssuer) Create(action, subject string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify reports whether token was issued by Create for the same action and subject
// and has not expired.
func (t *TokenIssuer) Verify(token, action, subject string) bool {
	return t.check(token, action, subject) == nil
}

func (t *TokenIssuer) check(token, action, subject string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Action != action || claims.Subject != subject {
		return ErrInvalidToken
	}

	return nil
}
