package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/audit"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/middleware"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/pagination"
)

// PropertyHandler serves listing creation, search and moderation
type PropertyHandler struct {
	propertyService *service.PropertyService
	audit           *audit.Logger
	logger          *slog.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *service.PropertyService, auditLogger *audit.Logger, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		audit:           auditLogger,
		logger:          logger,
	}
}

type createPropertyRequest struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Price    int64  `json:"price"`
	Location string `json:"location"`
	Rooms    int    `json:"rooms"`
	OwnerID  string `json:"ownerId"`
}

// Create handles POST /api/{version}/properties. OwnerID defaults to the
// caller; only an admin may create on behalf of another owner.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req createPropertyRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	fe := fieldErrors{}
	if req.Title == "" {
		fe.add("title", "title is required")
	}
	if !domain.ValidPropertyType(domain.PropertyType(req.Type)) {
		fe.add("type", "type must be HOUSE, APARTMENT, PLOT or ROOM")
	}
	if req.Price < 0 {
		fe.add("price", "price must not be negative")
	}
	if req.Location == "" {
		fe.add("location", "location is required")
	}
	if req.Rooms < 0 {
		fe.add("rooms", "rooms must not be negative")
	}
	if !fe.empty() {
		sendError(w, http.StatusBadRequest, "Validation failed", fe)
		return
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = identity.UserID
	}
	if ownerID != identity.UserID && identity.Role != domain.RoleAdmin {
		sendError(w, http.StatusForbidden, "Only an admin may create properties for another owner", nil)
		return
	}

	property, err := h.propertyService.Create(service.CreatePropertyInput{
		Title:    req.Title,
		Type:     domain.PropertyType(req.Type),
		Price:    req.Price,
		Location: req.Location,
		Rooms:    req.Rooms,
		OwnerID:  ownerID,
	})
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendSuccess(w, http.StatusCreated, "Property created successfully", property)
}

// parsePropertyFilters reads search filters from query parameters. Unknown
// enum values are ignored rather than rejected.
func parsePropertyFilters(query url.Values) domain.PropertyFilters {
	filters := domain.PropertyFilters{
		Location: query.Get("location"),
	}
	if t := domain.PropertyType(query.Get("type")); domain.ValidPropertyType(t) {
		filters.Type = t
	}
	if s := domain.PropertyStatus(query.Get("status")); domain.ValidPropertyStatus(s) {
		filters.Status = s
	}
	if v, err := strconv.ParseInt(query.Get("minPrice"), 10, 64); err == nil && v > 0 {
		filters.MinPrice = v
	}
	if v, err := strconv.ParseInt(query.Get("maxPrice"), 10, 64); err == nil && v > 0 {
		filters.MaxPrice = v
	}
	if v, err := strconv.Atoi(query.Get("rooms")); err == nil && v > 0 {
		filters.Rooms = v
	}
	if raw := query.Get("verified"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filters.Verified = &v
		}
	}
	return filters
}

// List handles GET /api/{version}/properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.Parse(r.URL.Query())
	filters := parsePropertyFilters(r.URL.Query())

	properties, total, err := h.propertyService.Search(filters, params.Page, params.PageSize)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendPaginated(w, "Properties retrieved", properties, pagination.NewMeta(params, total))
}

// GetByID handles GET /api/{version}/properties/{id}
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	property, err := h.propertyService.GetByID(r.PathValue("id"))
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, "Property retrieved", property)
}

type updatePropertyRequest struct {
	Title    *string `json:"title"`
	Type     *string `json:"type"`
	Price    *int64  `json:"price"`
	Location *string `json:"location"`
	Rooms    *int    `json:"rooms"`
	Status   *string `json:"status"`
}

// Update handles PATCH /api/{version}/properties/{id}. Only the owner or an
// admin may update; ownership is enforced by the service.
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req updatePropertyRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	fe := fieldErrors{}
	patch := domain.PropertyPatch{
		Title:    req.Title,
		Price:    req.Price,
		Location: req.Location,
		Rooms:    req.Rooms,
	}
	if req.Type != nil {
		t := domain.PropertyType(*req.Type)
		if !domain.ValidPropertyType(t) {
			fe.add("type", "type must be HOUSE, APARTMENT, PLOT or ROOM")
		}
		patch.Type = &t
	}
	if req.Status != nil {
		s := domain.PropertyStatus(*req.Status)
		if !domain.ValidPropertyStatus(s) {
			fe.add("status", "status must be AVAILABLE, RENTED or SOLD")
		}
		patch.Status = &s
	}
	if req.Price != nil && *req.Price < 0 {
		fe.add("price", "price must not be negative")
	}
	if req.Rooms != nil && *req.Rooms < 0 {
		fe.add("rooms", "rooms must not be negative")
	}
	if !fe.empty() {
		sendError(w, http.StatusBadRequest, "Validation failed", fe)
		return
	}

	property, err := h.propertyService.Update(r.PathValue("id"), patch, identity.UserID, identity.Role)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, "Property updated", property)
}

// Verify handles PATCH /api/{version}/properties/{id}/verify (admin only)
func (h *PropertyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := r.PathValue("id")

	property, err := h.propertyService.Verify(id, identity.UserID)
	if err != nil {
		h.audit.LogVerification(identity.UserID, "property", id, "failed")
		sendServiceError(w, h.logger, err)
		return
	}

	h.audit.LogVerification(identity.UserID, "property", id, "success")
	sendSuccess(w, http.StatusOK, "Property verified", property)
}

// PendingVerification handles GET /api/{version}/properties/pending/verification (admin only)
func (h *PropertyHandler) PendingVerification(w http.ResponseWriter, r *http.Request) {
	params := pagination.Parse(r.URL.Query())
	properties, total, err := h.propertyService.ListPendingVerification(params.Page, params.PageSize)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendPaginated(w, "Pending properties retrieved", properties, pagination.NewMeta(params, total))
}

// ListByOwner handles GET /api/{version}/users/{id}/properties
func (h *PropertyHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	properties, err := h.propertyService.ListByOwner(r.PathValue("id"))
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, "Properties retrieved", properties)
}

type addMediaRequest struct {
	URL string `json:"url"`
}

// AddMedia handles POST /api/{version}/properties/{id}/media
func (h *PropertyHandler) AddMedia(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req addMediaRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.URL == "" {
		sendError(w, http.StatusBadRequest, "Validation failed", fieldErrors{"url": {"url is required"}})
		return
	}

	media, err := h.propertyService.AddMedia(r.PathValue("id"), req.URL, identity.UserID, identity.Role)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusCreated, "Media attached", media)
}
