package auth

import (
	"testing"
	"time"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.GenerateToken("user-1", domain.RoleTenant, "+250788111222")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != domain.RoleTenant || claims.Phone != "+250788111222" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	token, err := tm.GenerateToken("user-1", domain.RoleTenant, "+250788111222")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected validation to fail with wrong secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	// NewTokenManager replaces non-positive lifetimes with the default, so
	// build an expired token via a tiny positive lifetime instead.
	tm := NewTokenManager("test-secret", time.Millisecond)

	token, err := tm.GenerateToken("user-1", domain.RoleTenant, "+250788111222")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected validation to fail for expired token")
	}
}

func TestGenerateRequiresUserID(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.GenerateToken("", domain.RoleTenant, ""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("expected token, got %q err=%v", token, err)
	}

	for _, header := range []string{"", "abc.def.ghi", "Basic abc", "Bearer a b"} {
		if _, err := ExtractToken(header); err == nil {
			t.Errorf("expected error for header %q", header)
		}
	}
}
