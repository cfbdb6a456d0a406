package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/events"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/observability/metrics"
)

// RequestService drives the rental-interest workflow. A request moves
// PENDING -> CONNECTED -> COMPLETED, never skipping a state and never moving
// backwards; completion also marks the property RENTED.
type RequestService struct {
	requestRepo  domain.RequestRepository
	userRepo     domain.UserRepository
	propertyRepo domain.PropertyRepository
	broker       *events.Broker
	logger       *slog.Logger
}

// NewRequestService creates a new request service
func NewRequestService(
	requestRepo domain.RequestRepository,
	userRepo domain.UserRepository,
	propertyRepo domain.PropertyRepository,
	broker *events.Broker,
	logger *slog.Logger,
) *RequestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestService{
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
		broker:       broker,
		logger:       logger,
	}
}

// Create opens a PENDING request for a property. The tenant must exist and
// be verified, the property must be AVAILABLE, and the tenant may hold at
// most one pending request per property.
func (s *RequestService) Create(tenantID, propertyID, message string) (*domain.Request, error) {
	tenant, err := s.userRepo.GetByID(tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("tenant: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if !tenant.Verified {
		return nil, fmt.Errorf("tenant must be verified to submit requests: %w", domain.ErrUnauthorized)
	}

	property, err := s.propertyRepo.GetByID(propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("property: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if property.Status != domain.PropertyAvailable {
		return nil, fmt.Errorf("property is not available: %w", domain.ErrConflict)
	}

	// Application-level duplicate check; the partial unique index on
	// pending (tenant, property) pairs is the guard of record under
	// concurrent double submission.
	existing, _, err := s.requestRepo.Search(domain.RequestFilters{
		TenantID:   tenantID,
		PropertyID: propertyID,
		Status:     domain.RequestPending,
	}, 1, 1)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("you already have a pending request for this property: %w", domain.ErrConflict)
	}

	request := &domain.Request{
		TenantID:   tenantID,
		PropertyID: propertyID,
		Message:    message,
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, err
	}
	request.Tenant = tenant.View()
	request.Property = property

	metrics.ObserveRequestTransition("created")
	s.broker.Publish("request.created", request.ID, tenantID)
	s.logger.Info("request created",
		slog.String("request_id", request.ID),
		slog.String("tenant_id", tenantID),
		slog.String("property_id", propertyID),
	)
	return request, nil
}

// Search returns requests matching the filters, newest first.
func (s *RequestService) Search(filters domain.RequestFilters, page, pageSize int) ([]*domain.Request, int, error) {
	return s.requestRepo.Search(filters, page, pageSize)
}

// GetByID returns a request with its tenant and property.
func (s *RequestService) GetByID(id string) (*domain.Request, error) {
	return s.requestRepo.GetByID(id)
}

// Connect moves a PENDING request to CONNECTED, recording the mediating
// admin. The HTTP boundary already gates the route to admins; the role is
// re-checked here so the invariant holds for any future caller.
func (s *RequestService) Connect(id, adminID string) (*domain.Request, error) {
	admin, err := s.userRepo.GetByID(adminID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("admin: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if admin.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("only an admin may connect requests: %w", domain.ErrUnauthorized)
	}

	request, err := s.requestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestPending {
		return nil, fmt.Errorf("request is not in pending status: %w", domain.ErrConflict)
	}

	connected, err := s.requestRepo.Connect(id, adminID)
	if err != nil {
		return nil, err
	}

	metrics.ObserveRequestTransition("connected")
	s.broker.Publish("request.connected", connected.ID, adminID)
	s.logger.Info("request connected",
		slog.String("request_id", connected.ID),
		slog.String("admin_id", adminID),
	)
	return connected, nil
}

// Complete moves a CONNECTED request to COMPLETED and the property to
// RENTED. The two writes happen in one transaction at the repository, so no
// observer ever sees one without the other.
func (s *RequestService) Complete(id string) (*domain.Request, error) {
	request, err := s.requestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestConnected {
		return nil, fmt.Errorf("request must be connected before completion: %w", domain.ErrConflict)
	}

	completed, err := s.requestRepo.Complete(id)
	if err != nil {
		return nil, err
	}

	metrics.ObserveRequestTransition("completed")
	s.broker.Publish("request.completed", completed.ID, completed.AdminID)
	s.logger.Info("request completed",
		slog.String("request_id", completed.ID),
		slog.String("property_id", completed.PropertyID),
	)
	return completed, nil
}
