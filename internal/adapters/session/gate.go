// Package session guards the scoring API behind a shared passcode. A matching
// code is exchanged for a signed, time-limited session token.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CodeLength is the exact length of a passcode.
	CodeLength = 7
	// DefaultTTL is one week.
	DefaultTTL = 604800 * time.Second
	// DefaultCookieName is the cookie carrying the session token.
	DefaultCookieName = "liao_session"
)

// PasscodeChecker looks up passcodes by exact match.
type PasscodeChecker interface {
	PasscodeExists(ctx context.Context, code string) (bool, error)
}

// Session describes a verified token.
type Session struct {
	ID        string    `json:"id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate issues and verifies session tokens.
type Gate struct {
	codes  PasscodeChecker
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewGate creates a gate signing tokens with secret.
func NewGate(codes PasscodeChecker, secret string, opts ...Option) (*Gate, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	g := &Gate{
		codes:  codes,
		secret: []byte(secret),
		ttl:    DefaultTTL,
		issuer: "liao",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// TTL returns the lifetime of issued sessions.
func (g *Gate) TTL() time.Duration { return g.ttl }

// ValidateCode checks the passcode shape without touching the store.
func ValidateCode(code string) error {
	if utf8.RuneCountInString(code) != CodeLength || strings.TrimSpace(code) != code {
		return ErrCodeFormat
	}
	return nil
}

// Login exchanges a passcode for a signed session token.
func (g *Gate) Login(ctx context.Context, code string) (string, Session, error) {
	if err := ValidateCode(code); err != nil {
		return "", Session{}, err
	}
	ok, err := g.codes.PasscodeExists(ctx, code)
	if err != nil {
		return "", Session{}, fmt.Errorf("session.Login: %w", err)
	}
	if !ok {
		return "", Session{}, ErrCodeMismatch
	}
	return g.issue()
}

func (g *Gate) issue() (string, Session, error) {
	now := g.now().UTC().Truncate(time.Second)
	sess := Session{
		ID:        uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(g.ttl),
	}
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Issuer:    g.issuer,
		IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("session.issue: %w", err)
	}
	return token, sess, nil
}

// Verify checks a session token. Any failure is ErrInvalidSession.
func (g *Gate) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidSession
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	},
		jwt.WithTimeFunc(g.now),
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, fmt.Errorf("%w: expired", ErrInvalidSession)
		}
		return Session{}, ErrInvalidSession
	}
	if !parsed.Valid {
		return Session{}, ErrInvalidSession
	}

	sess := Session{ID: claims.ID}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Cookie builds the session cookie for token.
func Cookie(name, token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func ClearCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
