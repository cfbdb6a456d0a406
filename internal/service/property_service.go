package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/events"
)

// PropertyService handles listing creation, search and moderation
type PropertyService struct {
	propertyRepo domain.PropertyRepository
	userRepo     domain.UserRepository
	broker       *events.Broker
	logger       *slog.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(
	propertyRepo domain.PropertyRepository,
	userRepo domain.UserRepository,
	broker *events.Broker,
	logger *slog.Logger,
) *PropertyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyService{
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		broker:       broker,
		logger:       logger,
	}
}

// CreatePropertyInput carries validated listing fields
type CreatePropertyInput struct {
	Title    string
	Type     domain.PropertyType
	Price    int64
	Location string
	Rooms    int
	OwnerID  string
}

// Create adds a new AVAILABLE, unverified listing. The owner must exist and
// be verified.
func (s *PropertyService) Create(input CreatePropertyInput) (*domain.Property, error) {
	owner, err := s.userRepo.GetByID(input.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("owner: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if !owner.Verified {
		return nil, fmt.Errorf("owner must be verified to create properties: %w", domain.ErrUnauthorized)
	}

	property := &domain.Property{
		Title:    input.Title,
		Type:     input.Type,
		Price:    input.Price,
		Location: input.Location,
		Rooms:    input.Rooms,
		OwnerID:  input.OwnerID,
	}

	if err := s.propertyRepo.Create(property); err != nil {
		return nil, err
	}
	property.Owner = owner.View()

	s.logger.Info("property created",
		slog.String("property_id", property.ID),
		slog.String("owner_id", property.OwnerID),
	)
	return property, nil
}

// Search returns listings matching the filters, newest first.
func (s *PropertyService) Search(filters domain.PropertyFilters, page, pageSize int) ([]*domain.Property, int, error) {
	return s.propertyRepo.Search(filters, page, pageSize)
}

// GetByID returns a listing with its owner and media.
func (s *PropertyService) GetByID(id string) (*domain.Property, error) {
	return s.propertyRepo.GetByID(id)
}

// Update applies a partial patch. Only the owner or an admin may update.
func (s *PropertyService) Update(id string, patch domain.PropertyPatch, actorID string, actorRole domain.Role) (*domain.Property, error) {
	property, err := s.propertyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if property.OwnerID != actorID && actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("only the owner or an admin may update this property: %w", domain.ErrUnauthorized)
	}

	updated, err := s.propertyRepo.Update(id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("property updated",
		slog.String("property_id", id),
		slog.String("actor_id", actorID),
	)
	return updated, nil
}

// Verify marks a listing as verified. Idempotent.
func (s *PropertyService) Verify(id, adminID string) (*domain.Property, error) {
	property, err := s.propertyRepo.Verify(id)
	if err != nil {
		return nil, err
	}

	s.broker.Publish("property.verified", property.ID, adminID)
	s.logger.Info("property verified",
		slog.String("property_id", property.ID),
		slog.String("admin_id", adminID),
	)
	return property, nil
}

// ListPendingVerification returns unverified listings, newest first.
func (s *PropertyService) ListPendingVerification(page, pageSize int) ([]*domain.Property, int, error) {
	return s.propertyRepo.ListPendingVerification(page, pageSize)
}

// ListByOwner returns all listings owned by a landlord.
func (s *PropertyService) ListByOwner(ownerID string) ([]*domain.Property, error) {
	if _, err := s.userRepo.GetByID(ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("owner: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return s.propertyRepo.ListByOwner(ownerID)
}

// AddMedia attaches a media URL to a listing. Only the owner or an admin may
// attach media.
func (s *PropertyService) AddMedia(propertyID, url, actorID string, actorRole domain.Role) (*domain.Media, error) {
	property, err := s.propertyRepo.GetByID(propertyID)
	if err != nil {
		return nil, err
	}

	if property.OwnerID != actorID && actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("only the owner or an admin may attach media: %w", domain.ErrUnauthorized)
	}

	media := &domain.Media{
		PropertyID: propertyID,
		URL:        url,
	}
	if err := s.propertyRepo.AddMedia(media); err != nil {
		return nil, err
	}
	return media, nil
}
