package security

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestHashAndComparePassword(t *testing.T) {
	cfg := config.PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := HashPassword("Secret@123", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !ComparePassword("Secret@123", hash) {
		t.Fatal("expected password to match its hash")
	}
	if ComparePassword("secret@123", hash) {
		t.Fatal("expected different password not to match")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	cfg := config.PasswordConfig{BcryptCost: bcrypt.MinCost}
	a, err := HashPassword("Secret@123", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	b, err := HashPassword("Secret@123", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salts to yield distinct hashes")
	}
}

func TestComparePasswordMalformedHash(t *testing.T) {
	if ComparePassword("Secret@123", "not-a-hash") {
		t.Fatal("malformed hash must not match")
	}
	if ComparePassword("", "") {
		t.Fatal("empty input must not match")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatal("expected empty password to fail")
	}
}

func TestHashPasswordRejectsInputBcryptCannotTake(t *testing.T) {
	cfg := config.PasswordConfig{BcryptCost: bcrypt.MinCost}
	if _, err := HashPassword("Aa1@"+strings.Repeat("x", 68), cfg); err != nil {
		t.Fatalf("72 byte password should hash: %v", err)
	}
	_, err := HashPassword("Aa1@"+strings.Repeat("x", 80), cfg)
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestCostFromConfigClamps(t *testing.T) {
	if got := costFromConfig(config.PasswordConfig{}); got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := costFromConfig(config.PasswordConfig{BcryptCost: 1}); got != bcrypt.MinCost {
		t.Fatalf("expected min cost, got %d", got)
	}
	if got := costFromConfig(config.PasswordConfig{BcryptCost: 99}); got != bcrypt.MaxCost {
		t.Fatalf("expected max cost, got %d", got)
	}
}
