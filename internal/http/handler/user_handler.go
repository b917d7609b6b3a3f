package handler

import (
	"net/http"

	"github.com/straye-as/project-ledger-api/internal/auth"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List godoc
// @Summary List users
// @Description Get paginated list of users in the caller's company
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param role query string false "Filter by role" Enums(Admin, Project Manager, Team Member, Sales/Finance)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.UserDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	page, pageSize := pagination(r)

	role := queryString[domain.UserRole](r, "role")
	if role != nil && !role.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	result, err := h.userService.List(r.Context(), p, role, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "list users")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create user
// @Description Admins create any role. Project managers allowed to manage users create team members only.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User data"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req domain.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), p, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create user")
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+user.ID.String())
	respondJSON(w, http.StatusCreated, user)
}

// UpdateHourlyRate godoc
// @Summary Update hourly rate
// @Description Changes the rate used for future timesheet costs. Existing entries keep their cost.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body domain.UpdateHourlyRateRequest true "New rate"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id}/rate [put]
func (h *UserHandler) UpdateHourlyRate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateHourlyRateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateHourlyRate(r.Context(), p, id, req.HourlyRate)
	if err != nil {
		respondServiceError(w, h.logger, err, "update hourly rate")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// SetActive godoc
// @Summary Activate or deactivate user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body domain.UpdateUserActiveRequest true "Active flag"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id}/active [put]
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateUserActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.SetActive(r.Context(), p, id, req.IsActive)
	if err != nil {
		respondServiceError(w, h.logger, err, "update user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
