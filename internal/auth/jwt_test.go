package auth

import (
	"testing"

	"blogit/config"
)

func setTestConfig(secret string, expire int64) {
	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{Secret: secret, ExpireSeconds: expire},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	setTestConfig("unit-test-secret", 3600)

	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expiry/issuance claims missing")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds(); got != 3600 {
		t.Errorf("token lifetime = %.fs, want 3600s", got)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	setTestConfig("secret-one", 3600)
	token, err := GenerateToken(1, "alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	setTestConfig("secret-two", 3600)
	if _, err := ParseToken(token); err == nil {
		t.Fatal("expected verification failure with a different secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	setTestConfig("unit-test-secret", -10)
	token, err := GenerateToken(1, "alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	setTestConfig("unit-test-secret", 3600)
	if _, err := ParseToken("not-a-jwt"); err == nil {
		t.Fatal("expected malformed token to fail verification")
	}
}
