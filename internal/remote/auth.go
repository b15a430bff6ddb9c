package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

// Session identifies the remote auth subject whose data this single-tenant
// deployment operates on.
type Session struct {
	UserID string
	Email  string
}

// SessionProbe answers "is there a valid remote session right now". It is
// evaluated per repository call, not cached globally, so capability can flip
// between calls (token expiry, reconfiguration).
type SessionProbe interface {
	Session(ctx context.Context) (*Session, error)
}

var ErrNoSession = errors.New("remote: no active session")

// TokenAuth derives the session from the configured remote access token.
// With a JWT secret configured the token signature is verified (HMAC);
// without one the claims are read unverified but expiry is still enforced.
type TokenAuth struct {
	token  string
	secret string
	log    *logger.Logger
}

func NewTokenAuth(token, secret string, baseLog *logger.Logger) *TokenAuth {
	return &TokenAuth{token: token, secret: secret, log: baseLog.With("client", "TokenAuth")}
}

func (a *TokenAuth) Session(ctx context.Context) (*Session, error) {
	if a.token == "" {
		return nil, ErrNoSession
	}
	claims := jwt.MapClaims{}
	if a.secret != "" {
		if _, err := jwt.ParseWithClaims(a.token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(a.secret), nil
		}); err != nil {
			return nil, err
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(a.token, claims); err != nil {
			return nil, err
		}
		exp, err := claims.GetExpirationTime()
		if err == nil && exp != nil && exp.Before(time.Now()) {
			return nil, jwt.ErrTokenExpired
		}
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrNoSession
	}
	email, _ := claims["email"].(string)
	return &Session{UserID: sub, Email: email}, nil
}
