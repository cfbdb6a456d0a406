package service

import (
	"errors"
	"testing"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	s := NewUserService(repo, nil, nil)

	view, err := s.Register(RegisterInput{
		Name:     "Alice",
		Phone:    "+250788111222",
		Role:     domain.RoleTenant,
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if view.ID == "" {
		t.Fatalf("expected user id")
	}
	if view.Verified {
		t.Fatalf("new users must start unverified")
	}

	user, err := s.Login("+250788111222", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != view.ID {
		t.Fatalf("expected user %s, got %s", view.ID, user.ID)
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	repo := newMemUserRepo()
	s := NewUserService(repo, nil, nil)

	input := RegisterInput{Name: "Alice", Phone: "+250788111222", Role: domain.RoleTenant, Password: "secret1"}
	if _, err := s.Register(input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	input.Name = "Bob"
	_, err := s.Register(input)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	s := NewUserService(newMemUserRepo(), nil, nil)

	_, err := s.Register(RegisterInput{
		Name:     "Mallory",
		Phone:    "+250788999888",
		Role:     domain.RoleAdmin,
		Password: "secret1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	s := NewUserService(newMemUserRepo(), nil, nil)

	_, err := s.Register(RegisterInput{
		Name:     "Alice",
		Phone:    "+250788111222",
		Role:     domain.RoleTenant,
		Password: "short",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemUserRepo()
	s := NewUserService(repo, nil, nil)

	if _, err := s.Register(RegisterInput{
		Name: "Alice", Phone: "+250788111222", Role: domain.RoleTenant, Password: "secret1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, errUnknown := s.Login("+250788000000", "secret1")
	_, errWrongPass := s.Login("+250788111222", "wrong-password")

	if !errors.Is(errUnknown, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for unknown phone, got %v", errUnknown)
	}
	if !errors.Is(errWrongPass, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for wrong password, got %v", errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Fatalf("failure messages must match to prevent phone enumeration: %q vs %q",
			errUnknown.Error(), errWrongPass.Error())
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	repo := newMemUserRepo()
	s := NewUserService(repo, nil, nil)
	admin := seedUser(repo, domain.RoleAdmin, true)
	user := seedUser(repo, domain.RoleTenant, false)

	first, err := s.Verify(user.ID, admin.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !first.Verified {
		t.Fatalf("expected verified user")
	}

	second, err := s.Verify(user.ID, admin.ID)
	if err != nil {
		t.Fatalf("re-verify failed: %v", err)
	}
	if !second.Verified {
		t.Fatalf("expected user to stay verified")
	}
}

func TestListPendingVerification(t *testing.T) {
	repo := newMemUserRepo()
	s := NewUserService(repo, nil, nil)
	seedUser(repo, domain.RoleTenant, false)
	seedUser(repo, domain.RoleLandlord, false)
	seedUser(repo, domain.RoleCommissioner, true)

	pending, total, err := s.ListPendingVerification(1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(pending) != 2 {
		t.Fatalf("expected 2 pending users, got total=%d len=%d", total, len(pending))
	}
}
