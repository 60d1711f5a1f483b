// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"sort"
	"strings"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
)

type FeedbackHandler struct {
	db *sql.DB
}

func NewFeedbackHandler(db *sql.DB) *FeedbackHandler {
	return &FeedbackHandler{db: db}
}

// CreateFeedback handles POST /feedback
// Anonymous feedback is stored without the caller's id.
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreateFeedbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if isBlank(req.Category) || isBlank(req.Subject) || isBlank(req.Message) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "category, subject and message are required")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	var userID sql.NullString
	if !req.Anonymous {
		userID = sql.NullString{String: callerID, Valid: true}
	}
	var rating sql.NullInt64
	if req.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*req.Rating), Valid: true}
	}

	feedbackID := auth.GenerateID()
	_, err := h.db.Exec(`
		INSERT INTO feedback (id, user_id, category, subject, message, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, feedbackID, userID, strings.TrimSpace(req.Category), strings.TrimSpace(req.Subject),
		strings.TrimSpace(req.Message), rating, now())
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert feedback")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}

	logger.Log.WithField("feedback_id", feedbackID).Info("feedback submitted")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: feedbackID})
}

// ListFeedback handles GET /feedback?category=
// Admins and management see everything; everyone else sees their own
// non-anonymous entries.
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	caller, err := loadUser(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load caller")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	seesAll := caller.Role == models.RoleAdmin || caller.Role == models.RoleManagement
	category := r.URL.Query().Get("category")

	rows, err := h.db.Query("SELECT id, user_id, category, subject, message, rating, created_at FROM feedback")
	if err != nil {
		logger.Log.WithError(err).Error("failed to query feedback")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		var userID sql.NullString
		var rating sql.NullInt64
		if err := rows.Scan(&f.ID, &userID, &f.Category, &f.Subject, &f.Message, &rating, &f.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("failed to scan feedback")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		f.UserID = stringPtr(userID)
		if rating.Valid {
			v := int(rating.Int64)
			f.Rating = &v
		}

		if !seesAll && (f.UserID == nil || *f.UserID != callerID) {
			continue
		}
		if category != "" && !strings.EqualFold(f.Category, category) {
			continue
		}
		entries = append(entries, f)
	}
	if err := rows.Err(); err != nil {
		logger.Log.WithError(err).Error("failed to read feedback")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })

	middleware.JSONResponse(w, http.StatusOK, entries)
}
