package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-roster/internal/usecase/user"
	"user-roster/internal/view"
	pkgerrors "user-roster/pkg/errors"
	"user-roster/pkg/logger"
)

const (
	// ActionPath receives the add-user form.
	ActionPath = "/action"

	// ActionAddUser is the only action the action path accepts.
	ActionAddUser = "addUser"

	pageTitle = "Users"

	msgInvalidRequest  = "Invalid request"
	msgInvalidUserData = "Invalid user data"
	msgInternalError   = "Internal error"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ActionResponse is the reply of the action path.
type ActionResponse struct {
	Success bool          `json:"success"`
	User    *UserResponse `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Page handles GET /
func (h *UserHandler) Page(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{})
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Error("Gin Page failed", zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	rows := make([]view.UserRow, len(resp.Users))
	for i, u := range resp.Users {
		rows[i] = view.UserRow{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	c.HTML(http.StatusOK, view.IndexTemplate, view.PageData{
		Title:      pageTitle,
		ActionPath: ActionPath,
		Users:      rows,
	})
}

// Action handles the add-user form posted to ActionPath.
// Every outcome the form can produce is a 200 with success and message in the body.
func (h *UserHandler) Action(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	if c.Request.Method != http.MethodPost || c.PostForm("action") != ActionAddUser {
		log.Warn("Invalid action request",
			zap.String("method", c.Request.Method),
			zap.String("action", c.PostForm("action")),
		)
		c.JSON(http.StatusOK, ActionResponse{Message: msgInvalidRequest})
		return
	}

	resp, err := h.uc.AddUser(c.Request.Context(), user.AddUserRequest{
		Name:  c.PostForm("name"),
		Email: c.PostForm("email"),
	})
	if err != nil {
		var validationErr *pkgerrors.ValidationError
		if errors.As(err, &validationErr) {
			log.Warn("Invalid user data", zap.Error(err))
			c.JSON(http.StatusOK, ActionResponse{Message: msgInvalidUserData})
			return
		}

		log.Error("Gin AddUser failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ActionResponse{Message: msgInternalError})
		return
	}

	log.Info("User added", zap.Int64("id", resp.User.ID))
	c.JSON(http.StatusOK, ActionResponse{
		Success: true,
		User:    toResponse(resp.User),
	})
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := c.DefaultQuery("query", "")

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{Query: query})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = *toResponse(u)
	}

	c.JSON(http.StatusOK, ListUsersResponse{Users: users})
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var validationErr *pkgerrors.ValidationError
	var notFoundErr *pkgerrors.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		log.Warn("Gin request rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_input",
			Message: validationErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
		})
	default:
		log.Error("Gin request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func toResponse(u user.User) *UserResponse {
	return &UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
