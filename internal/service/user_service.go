package service

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/events"
)

// UserService handles registration, login and verification of users
type UserService struct {
	userRepo domain.UserRepository
	broker   *events.Broker
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository, broker *events.Broker, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		userRepo: userRepo,
		broker:   broker,
		logger:   logger,
	}
}

// RegisterInput carries validated registration fields
type RegisterInput struct {
	Name       string
	Phone      string
	Role       domain.Role
	Password   string
	NationalID string
}

// Register creates a new unverified user. The phone number must be unique
// and ADMIN cannot be chosen through this path.
func (s *UserService) Register(input RegisterInput) (*domain.UserView, error) {
	if !domain.RegistrableRole(input.Role) {
		return nil, fmt.Errorf("role must be TENANT, LANDLORD or COMMISSIONER: %w", domain.ErrValidation)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", domain.ErrValidation)
	}

	// Application-level duplicate check; the unique constraint on phone is
	// the guard of record under concurrent registration.
	if _, err := s.userRepo.GetByPhone(input.Phone); err == nil {
		return nil, fmt.Errorf("user with this phone number already exists: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         input.Role,
		PasswordHash: string(hash),
		NationalID:   input.NationalID,
		Verified:     false,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user.View(), nil
}

// Login checks the phone/password pair and returns the user. Unknown phone
// and wrong password produce the same failure, so callers cannot enumerate
// registered numbers.
func (s *UserService) Login(phone, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		s.logger.Info("login attempt with unknown phone", slog.String("phone", phone))
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("user_id", user.ID))
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthenticated)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return user, nil
}

// GetByID returns the public view of a user
func (s *UserService) GetByID(id string) (*domain.UserView, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return user.View(), nil
}

// Verify marks a user as verified. Idempotent: re-verifying succeeds.
func (s *UserService) Verify(id, adminID string) (*domain.UserView, error) {
	user, err := s.userRepo.Verify(id)
	if err != nil {
		return nil, err
	}

	s.broker.Publish("user.verified", user.ID, adminID)
	s.logger.Info("user verified",
		slog.String("user_id", user.ID),
		slog.String("admin_id", adminID),
	)
	return user.View(), nil
}

// ListPendingVerification returns unverified users, newest first.
func (s *UserService) ListPendingVerification(page, pageSize int) ([]*domain.UserView, int, error) {
	users, total, err := s.userRepo.ListPendingVerification(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return domain.UserViews(users), total, nil
}
