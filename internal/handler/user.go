package handler

import (
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/audit"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/auth"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/middleware"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/pagination"
)

// UserHandler serves registration, login and user lookups
type UserHandler struct {
	userService *service.UserService
	tokens      *auth.TokenManager
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, tokens *auth.TokenManager, auditLogger *audit.Logger, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
		audit:       auditLogger,
		logger:      logger,
	}
}

type registerRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Password   string `json:"password"`
	NationalID string `json:"nationalId"`
}

// Register handles POST /api/{version}/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	fe := fieldErrors{}
	if req.Name == "" {
		fe.add("name", "name is required")
	}
	if req.Phone == "" {
		fe.add("phone", "phone is required")
	}
	if req.Role == "" {
		fe.add("role", "role is required")
	}
	if req.Password == "" {
		fe.add("password", "password is required")
	}
	if !fe.empty() {
		sendError(w, http.StatusBadRequest, "Validation failed", fe)
		return
	}

	user, err := h.userService.Register(service.RegisterInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Role:       domain.Role(req.Role),
		Password:   req.Password,
		NationalID: req.NationalID,
	})
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	sendSuccess(w, http.StatusCreated, "User registered successfully", user)
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      *domain.UserView `json:"user"`
	Token     string           `json:"token"`
	ExpiresIn int64            `json:"expiresIn"` // seconds
}

// Login handles POST /api/{version}/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.Phone == "" || req.Password == "" {
		sendError(w, http.StatusBadRequest, "Phone and password are required", nil)
		return
	}

	user, err := h.userService.Login(req.Phone, req.Password)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role, user.Phone)
	if err != nil {
		h.logger.Error("failed to sign token", slog.String("error", err.Error()))
		sendError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	sendSuccess(w, http.StatusOK, "Login successful", loginResponse{
		User:      user.View(),
		Token:     token,
		ExpiresIn: int64(h.tokens.ExpiresIn().Seconds()),
	})
}

// GetByID handles GET /api/{version}/users/{id}
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.PathValue("id"))
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, "User retrieved", user)
}

// Verify handles PATCH /api/{version}/users/{id}/verify (admin only)
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	id := r.PathValue("id")

	user, err := h.userService.Verify(id, identity.UserID)
	if err != nil {
		h.audit.LogVerification(identity.UserID, "user", id, "failed")
		sendServiceError(w, h.logger, err)
		return
	}

	h.audit.LogVerification(identity.UserID, "user", id, "success")
	sendSuccess(w, http.StatusOK, "User verified", user)
}

// PendingVerification handles GET /api/{version}/users/pending/verification (admin only)
func (h *UserHandler) PendingVerification(w http.ResponseWriter, r *http.Request) {
	params := pagination.Parse(r.URL.Query())
	users, total, err := h.userService.ListPendingVerification(params.Page, params.PageSize)
	if err != nil {
		sendServiceError(w, h.logger, err)
		return
	}
	sendPaginated(w, "Pending users retrieved", users, pagination.NewMeta(params, total))
}
