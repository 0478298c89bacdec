package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tidytask/core/internal/domain/entities"
	"github.com/tidytask/core/internal/infrastructure/logger"
	"github.com/tidytask/core/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles new account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Registration failed", "error", err, "email", req.Email)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Login failed", "error", err, "email", req.Email)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// UserHandler handles user-related requests
type UserHandler struct {
	userService ports.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService ports.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser handles user creation (admin only)
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req ports.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Create user failed", "error", err, "email", req.Email)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// GetCurrentUser handles getting current user info
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	actor := actorFromContext(c)

	user, err := h.userService.GetUser(c.Request().Context(), actor.UserID)
	if err != nil {
		h.logger.Error("Get current user failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// GetUser handles getting a specific user (admin only)
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser handles profile updates for the authenticated user
func (h *UserHandler) UpdateCurrentUser(c echo.Context) error {
	actor := actorFromContext(c)

	var req ports.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Regular users must not grant themselves roles.
	if !actor.IsAdmin() {
		req.Role = nil
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), actor.UserID, req)
	if err != nil {
		h.logger.Error("Update user failed", "error", err, "user_id", actor.UserID)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles user deletion (admin only)
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete user failed", "error", err, "user_id", id)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "User deleted successfully"})
}

// ListUsers handles listing users with pagination (admin only)
func (h *UserHandler) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, total, err := h.userService.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		h.logger.Error("List users failed", "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}

// Context keys set by the auth middleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// actorFromContext builds the service-layer actor from the values the auth
// middleware stored on the request.
func actorFromContext(c echo.Context) ports.Actor {
	actor := ports.Actor{Role: entities.UserRoleUser}

	if v, ok := c.Get(ContextUserID).(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			actor.UserID = id
		}
	}
	if role, ok := c.Get(ContextRole).(entities.UserRole); ok {
		actor.Role = role
	}

	return actor
}

// httpError maps core error categories to HTTP responses: validation
// failures carry per-field messages, domain rule violations read as
// unprocessable, denied access is forbidden (not a generic error), and
// missing entities are not found.
func httpError(err error) error {
	var ve *entities.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{
			Message: "validation failed",
			Fields:  ve.Fields,
		})
	}

	var de *entities.DomainError
	if errors.As(err, &de) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ports.ErrorResponse{Message: de.Message})
	}

	switch {
	case errors.Is(err, entities.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, ports.ErrorResponse{Message: "forbidden"})
	case errors.Is(err, entities.ErrTaskNotFound),
		errors.Is(err, entities.ErrCategoryNotFound),
		errors.Is(err, entities.ErrSubtaskNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ports.ErrorResponse{Message: err.Error()})
	case errors.Is(err, entities.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, ports.ErrorResponse{Message: err.Error()})
	case errors.Is(err, entities.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, ports.ErrorResponse{Message: "invalid credentials"})
	}

	return echo.NewHTTPError(http.StatusInternalServerError, ports.ErrorResponse{Message: "internal error"})
}
