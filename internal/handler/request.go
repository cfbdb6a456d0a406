package handler

import (
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/audit"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/middleware"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/pagination"
)

// RequestHandler serves the rental-interest workflow
type RequestHandler struct {
	requestService *service.RequestService
	audit          *audit.Logger
	logger         *slog.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *service.RequestService, auditLogger *audit.Logger, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		audit:          auditLogger,
		logger:         logger,
	}
}

type createRequestRequest struct {
	TenantID   string `json:"tenantId"`
	PropertyID string `json:"propertyId"`
	Message    string `json:"message"`
}

// Create handles POST /api/{version}/requests. TenantID defaults to the
// caller; only an admin may open a request on behalf of another tenant.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req createRequestRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.PropertyID == "" {
		sendError(w, http.StatusBadRequest, "Validation failed", fieldErrors{"propertyId": {"propertyId is required"}})
		return
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = identity.UserID
	}
	if tenantID != identity.UserID && identity.Role != domain.RoleAdmin {
		sendError(w, http.StatusForbidden, "Only an admin may create requests for another tenant", nil)
		return
	}

	request, err := h.requestService.Create(tenantID, req.PropertyID, req.Message)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendSuccess(w, http.StatusCreated, "Request created successfully", request)
}

// List handles GET /api/{version}/requests. Non-admin callers only see their
// own requests.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	params := pagination.Parse(r.URL.Query())

	filters := domain.RequestFilters{
		PropertyID: r.URL.Query().Get("propertyId"),
	}
	if s := domain.RequestStatus(r.URL.Query().Get("status")); domain.ValidRequestStatus(s) {
		filters.Status = s
	}
	if identity.Role == domain.RoleAdmin {
		filters.TenantID = r.URL.Query().Get("tenantId")
	} else {
		filters.TenantID = identity.UserID
	}

	requests, total, err := h.requestService.Search(filters, params.Page, params.PageSize)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendPaginated(w, "Requests retrieved", requests, pagination.NewMeta(params, total))
}

// GetByID handles GET /api/{version}/requests/{id}. Only the tenant who
// opened the request or an admin may read it.
func (h *RequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	request, err := h.requestService.GetByID(r.PathValue("id"))
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	if request.TenantID != identity.UserID && identity.Role != domain.RoleAdmin {
		sendError(w, http.StatusForbidden, "Insufficient permissions", nil)
		return
	}
	sendSuccess(w, http.StatusOK, "Request retrieved", request)
}

// Connect handles PATCH /api/{version}/requests/{id}/connect (admin only)
func (h *RequestHandler) Connect(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := r.PathValue("id")

	request, err := h.requestService.Connect(id, identity.UserID)
	if err != nil {
		h.audit.LogMediation(identity.UserID, "connect", id, "failed")
		sendServiceError(w, h.logger, err)
		return
	}

	h.audit.LogMediation(identity.UserID, "connect", id, "success")
	sendSuccess(w, http.StatusOK, "Request connected", request)
}

// Complete handles PATCH /api/{version}/requests/{id}/complete (admin only)
func (h *RequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := r.PathValue("id")

	request, err := h.requestService.Complete(id)
	if err != nil {
		h.audit.LogMediation(identity.UserID, "complete", id, "failed")
		sendServiceError(w, h.logger, err)
		return
	}

	h.audit.LogMediation(identity.UserID, "complete", id, "success")
	sendSuccess(w, http.StatusOK, "Request completed", request)
}
