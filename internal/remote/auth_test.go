package remote

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestTokenAuth_VerifiedSessionCarriesSubjectAndEmail(t *testing.T) {
	token := signedToken(t, "s3cret", jwt.MapClaims{
		"sub":   "4f9f24bb-9d3e-4c5a-8a57-6f2f3f0c9d11",
		"email": "tutor@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	auth := NewTokenAuth(token, "s3cret", logger.NewNop())
	sess, err := auth.Session(context.Background())
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if sess.UserID != "4f9f24bb-9d3e-4c5a-8a57-6f2f3f0c9d11" || sess.Email != "tutor@example.com" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestTokenAuth_WrongSecretRejected(t *testing.T) {
	token := signedToken(t, "right", jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	auth := NewTokenAuth(token, "wrong", logger.NewNop())
	if _, err := auth.Session(context.Background()); err == nil {
		t.Fatalf("expected signature verification failure")
	}
}

func TestTokenAuth_UnverifiedModeStillEnforcesExpiry(t *testing.T) {
	expired := signedToken(t, "whatever", jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	auth := NewTokenAuth(expired, "", logger.NewNop())
	if _, err := auth.Session(context.Background()); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}

	live := signedToken(t, "whatever", jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	auth = NewTokenAuth(live, "", logger.NewNop())
	sess, err := auth.Session(context.Background())
	if err != nil || sess.UserID != "u" {
		t.Fatalf("expected unverified parse to succeed, got %+v, %v", sess, err)
	}
}

func TestTokenAuth_MissingSubjectRejected(t *testing.T) {
	token := signedToken(t, "s", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	auth := NewTokenAuth(token, "s", logger.NewNop())
	if _, err := auth.Session(context.Background()); err == nil {
		t.Fatalf("expected missing sub to be rejected")
	}
}

func TestTokenAuth_EmptyToken(t *testing.T) {
	auth := NewTokenAuth("", "", logger.NewNop())
	if _, err := auth.Session(context.Background()); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
