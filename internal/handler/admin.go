package handler

import (
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
)

// AdminHandler serves the admin dashboard aggregate
type AdminHandler struct {
	adminService *service.AdminService
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// Stats handles GET /api/{version}/admin/stats (admin only)
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.GetStats(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, "Stats retrieved", stats)
}
