package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/observability/metrics"
)

// platformFeeRate is the share of each commission the platform retains.
const platformFeeRate = 0.05

// PlatformFee computes the platform's share of a commission amount, rounded
// to the nearest integer with halves away from zero. Computed once at
// creation and persisted; never recomputed on read.
func PlatformFee(amount int64) int64 {
	return int64(math.Round(float64(amount) * platformFeeRate))
}

// CommissionService records brokered deals
type CommissionService struct {
	commissionRepo domain.CommissionRepository
	userRepo       domain.UserRepository
	propertyRepo   domain.PropertyRepository
	logger         *slog.Logger
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	commissionRepo domain.CommissionRepository,
	userRepo domain.UserRepository,
	propertyRepo domain.PropertyRepository,
	logger *slog.Logger,
) *CommissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommissionService{
		commissionRepo: commissionRepo,
		userRepo:       userRepo,
		propertyRepo:   propertyRepo,
		logger:         logger,
	}
}

// Create records a commission. The commissioner must exist, hold the
// COMMISSIONER role and be verified; the property must exist; the amount
// must be non-negative.
func (s *CommissionService) Create(propertyID, commissionerID string, amount int64) (*domain.Commission, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative: %w", domain.ErrValidation)
	}

	commissioner, err := s.userRepo.GetByID(commissionerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("commissioner: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if commissioner.Role != domain.RoleCommissioner {
		return nil, fmt.Errorf("user must be a commissioner: %w", domain.ErrUnauthorized)
	}
	if !commissioner.Verified {
		return nil, fmt.Errorf("commissioner must be verified: %w", domain.ErrUnauthorized)
	}

	property, err := s.propertyRepo.GetByID(propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("property: %w", domain.ErrNotFound)
		}
		return nil, err
	}

	commission := &domain.Commission{
		PropertyID:     propertyID,
		CommissionerID: commissionerID,
		Amount:         amount,
		Fee:            PlatformFee(amount),
	}
	if err := s.commissionRepo.Create(commission); err != nil {
		return nil, err
	}
	commission.Commissioner = commissioner.View()
	commission.Property = property

	metrics.ObserveCommissionRecorded(commission.Amount, commission.Fee)
	s.logger.Info("commission recorded",
		slog.String("commission_id", commission.ID),
		slog.String("commissioner_id", commissionerID),
		slog.Int64("amount", commission.Amount),
		slog.Int64("fee", commission.Fee),
	)
	return commission, nil
}

// Search returns commissions matching the filters, newest first.
func (s *CommissionService) Search(filters domain.CommissionFilters, page, pageSize int) ([]*domain.Commission, int, error) {
	return s.commissionRepo.Search(filters, page, pageSize)
}

// GetByID returns a commission with its commissioner and property.
func (s *CommissionService) GetByID(id string) (*domain.Commission, error) {
	return s.commissionRepo.GetByID(id)
}
