package handler

import (
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/middleware"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/pagination"
)

// CommissionHandler serves commission recording and lookup
type CommissionHandler struct {
	commissionService *service.CommissionService
	logger            *slog.Logger
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(commissionService *service.CommissionService, logger *slog.Logger) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
		logger:            logger,
	}
}

type createCommissionRequest struct {
	PropertyID     string `json:"propertyId"`
	CommissionerID string `json:"commissionerId"`
	Amount         int64  `json:"amount"`
}

// Create handles POST /api/{version}/commissions. CommissionerID defaults to
// the caller; only an admin may record on behalf of another commissioner.
func (h *CommissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req createCommissionRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	fe := fieldErrors{}
	if req.PropertyID == "" {
		fe.add("propertyId", "propertyId is required")
	}
	if req.Amount < 0 {
		fe.add("amount", "amount must not be negative")
	}
	if !fe.empty() {
		sendError(w, http.StatusBadRequest, "Validation failed", fe)
		return
	}

	commissionerID := req.CommissionerID
	if commissionerID == "" {
		commissionerID = identity.UserID
	}
	if commissionerID != identity.UserID && identity.Role != domain.RoleAdmin {
		sendError(w, http.StatusForbidden, "Only an admin may record commissions for another commissioner", nil)
		return
	}

	commission, err := h.commissionService.Create(req.PropertyID, commissionerID, req.Amount)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendSuccess(w, http.StatusCreated, "Commission recorded successfully", commission)
}

// List handles GET /api/{version}/commissions. Non-admin callers only see
// their own commissions.
func (h *CommissionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	params := pagination.Parse(r.URL.Query())

	filters := domain.CommissionFilters{
		PropertyID: r.URL.Query().Get("propertyId"),
	}
	if identity.Role == domain.RoleAdmin {
		filters.CommissionerID = r.URL.Query().Get("commissionerId")
	} else {
		filters.CommissionerID = identity.UserID
	}

	commissions, total, err := h.commissionService.Search(filters, params.Page, params.PageSize)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendPaginated(w, "Commissions retrieved", commissions, pagination.NewMeta(params, total))
}

// GetByID handles GET /api/{version}/commissions/{id}. Only the recording
// commissioner or an admin may read it.
func (h *CommissionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	commission, err := h.commissionService.GetByID(r.PathValue("id"))
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	if commission.CommissionerID != identity.UserID && identity.Role != domain.RoleAdmin {
		sendError(w, http.StatusForbidden, "Insufficient permissions", nil)
		return
	}
	sendSuccess(w, http.StatusOK, "Commission retrieved", commission)
}
