package token

import (
	"testing"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	mgr := NewSessionTokenManager("unit-test-secret", 1)

	tokenString, err := mgr.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := mgr.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.SessionID != "session-123" {
		t.Fatalf("unexpected session id: %q", claims.SessionID)
	}
}

func TestSessionToken_WrongSecretRejected(t *testing.T) {
	mgr := NewSessionTokenManager("secret-a", 1)
	other := NewSessionTokenManager("secret-b", 1)

	tokenString, err := mgr.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := other.VerifyToken(tokenString); err == nil {
		t.Fatalf("expected verification to fail with wrong secret")
	}
}

func TestSessionToken_GarbageRejected(t *testing.T) {
	mgr := NewSessionTokenManager("unit-test-secret", 1)

	if _, err := mgr.VerifyToken("not-a-jwt"); err == nil {
		t.Fatalf("expected verification to fail for malformed token")
	}
}
