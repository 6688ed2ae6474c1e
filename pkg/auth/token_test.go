package auth

import (
	"testing"
	"time"

	"github.com/cia-labs/nischte-app/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "nischte"}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	signed, err := MintToken(cfg, time.Now(), "user_2abc", time.Hour)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID() != "user_2abc" {
		t.Fatalf("unexpected user id %q", claims.UserID())
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintToken(cfg, time.Now(), "user_2abc", time.Hour)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseToken(other, signed); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintToken(cfg, time.Now().Add(-2*time.Hour), "user_2abc", time.Hour)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestMintRequiresUserID(t *testing.T) {
	if _, err := MintToken(testJWTConfig(), time.Now(), "  ", time.Hour); err == nil {
		t.Fatal("expected missing user id to fail")
	}
}
