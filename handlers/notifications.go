// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"sort"

	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

type NotificationHandler struct {
	db *sql.DB
}

func NewNotificationHandler(db *sql.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// ListNotifications handles GET /notifications
// Newest first; connection requests carry the pending connection they refer to.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	notifs, err := loadNotifications(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load notifications")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	conns, err := loadConnections(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load connections")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, viewmodel.BuildNotificationsResponse(callerID, notifs, conns, now()))
}

// MarkRead handles POST /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	// Scoped to the caller so other users' notifications look missing
	res, err := h.db.Exec(`
		UPDATE notification SET read = $1
		WHERE id = $2 AND user_id = $3
	`, true, r.PathValue("id"), callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to mark notification read")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Notification not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CountResponse{Updated: 1})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	res, err := h.db.Exec(`
		UPDATE notification SET read = $1
		WHERE user_id = $2 AND read = $3
	`, true, callerID, false)
	if err != nil {
		logger.Log.WithError(err).Error("failed to mark notifications read")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	updated, _ := res.RowsAffected()

	middleware.JSONResponse(w, http.StatusOK, models.CountResponse{Updated: updated})
}

func loadNotifications(db querier, userID string) ([]models.Notification, error) {
	rows, err := db.Query(`
		SELECT id, user_id, type, title, message, read, connection_id, created_at
		FROM notification
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifs := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var connID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &connID, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.ConnectionID = stringPtr(connID)
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}
