package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret means the process was started without a signing secret.
	// Tokens issued in that state could never be verified, so construction fails.
	ErrNoSecret = errors.New("jwt signing secret is not configured")

	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
	ErrTokenExpired   = errors.New("token is expired")
)

// Claims carries the identity a token asserts. The JSON keys match what the
// frontend already decodes ("username"/"userid"), so they stay lowercase.
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userid"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret      []byte
	registerTTL time.Duration
	loginTTL    time.Duration
}

func NewManager(secret string, registerTTL, loginTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	return &Manager{
		secret:      []byte(secret),
		registerTTL: registerTTL,
		loginTTL:    loginTTL,
	}, nil
}

// Issue signs a token binding {username, userID} with the given lifetime.
func (m *Manager) Issue(username, userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Username: username,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(m.secret)
}

// IssueRegistrationToken issues the short-lived bootstrap token handed out at
// sign-up. IssueLoginToken issues the durable session token.

func (m *Manager) IssueRegistrationToken(username, userID string) (string, error) {
	return m.Issue(username, userID, m.registerTTL)
}

func (m *Manager) IssueLoginToken(username, userID string) (string, error) {
	return m.Issue(username, userID, m.loginTTL)
}

// Verify parses and validates a token. On success the embedded claims are
// returned as-is; the store is never consulted again for this request.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
