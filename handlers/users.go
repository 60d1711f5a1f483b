// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

type UserHandler struct {
	db *sql.DB
}

func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{db: db}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if isBlank(req.Name) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if isBlank(req.Email) || !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if !models.IsValidRole(req.Role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be admin, management, hod or employee")
		return
	}

	var taken int
	err := h.db.QueryRow("SELECT COUNT(*) FROM app_user WHERE email = $1", req.Email).Scan(&taken)
	if err != nil {
		logger.Log.WithError(err).Error("failed to check email")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}

	userID := auth.GenerateID()
	err = insertIgnoringConflict(h.db, `
		INSERT INTO app_user (id, name, email, role, department, position, bio, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email) DO NOTHING
	`, userID, strings.TrimSpace(req.Name), req.Email, req.Role,
		nullableString(req.Department), nullableString(req.Position),
		nullableString(req.Bio), nullableString(req.AvatarURL), now())
	if err == errConflict {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert user")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "role": req.Role}).Info("user created")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: userID})
}

// ListUsers handles GET /users?q=&role=
// Each entry carries the caller's connection status with that user.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	role := r.URL.Query().Get("role")
	if role != "" && !models.IsValidRole(role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown role")
		return
	}

	users, err := loadUsers(h.db)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load users")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	conns, err := loadConnections(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load connections")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	users = viewmodel.Filter(users, r.URL.Query().Get("q"), viewmodel.UserFields...)

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		if u.ID == callerID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		views = append(views, viewmodel.BuildUserView(callerID, u, conns))
	}

	middleware.JSONResponse(w, http.StatusOK, views)
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	user, err := loadUser(h.db, r.PathValue("id"))
	if err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load user")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	conns, err := loadConnections(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load connections")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, viewmodel.BuildUserView(callerID, user, conns))
}
