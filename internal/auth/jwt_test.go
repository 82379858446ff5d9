package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager("test-secret-key", 24*time.Hour, 168*time.Hour)

	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour, time.Hour)

	if !errors.Is(err, ErrNoSecret) {
		t.Fatalf("got %v, want ErrNoSecret", err)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Issue("sol", "user-123", time.Hour)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify(token)

	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.Username != "sol" || claims.UserID != "user-123" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Issue("sol", "user-123", -1*time.Minute)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = m.Verify(token)

	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager(t)

	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := m.Verify(tok)

		if !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: got %v, want ErrTokenMalformed", tok, err)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t)

	other, err := NewManager("a-different-secret", time.Hour, time.Hour)

	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := other.Issue("sol", "user-123", time.Hour)

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = m.Verify(token)

	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("got %v, want ErrTokenMalformed", err)
	}
}

func TestRegistrationAndLoginTTLsDiffer(t *testing.T) {
	m := newTestManager(t)

	short, err := m.IssueRegistrationToken("sol", "user-123")
	if err != nil {
		t.Fatalf("IssueRegistrationToken failed: %v", err)
	}

	long, err := m.IssueLoginToken("sol", "user-123")
	if err != nil {
		t.Fatalf("IssueLoginToken failed: %v", err)
	}

	shortClaims, err := m.Verify(short)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	longClaims, err := m.Verify(long)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if !longClaims.ExpiresAt.After(shortClaims.ExpiresAt.Time) {
		t.Fatalf("login token should outlive registration token: %v vs %v",
			longClaims.ExpiresAt, shortClaims.ExpiresAt)
	}
}
