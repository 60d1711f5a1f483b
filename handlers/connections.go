// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
)

type ConnectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewConnectionHandler(db *sql.DB, cfg cliparse.Config) *ConnectionHandler {
	return &ConnectionHandler{db: db, cfg: cfg}
}

// Connect handles POST /connections
// Creates a pending request from the caller and notifies the addressee.
func (h *ConnectionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.ConnectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.UserID == callerID {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Cannot connect to yourself")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if !auth.IsValidID(req.UserID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if _, err := loadUser(tx, req.UserID); err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		logger.Log.WithError(err).Error("failed to load user")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	pairKey := auth.PairKey(callerID, req.UserID)
	var existing int
	if err := tx.QueryRow("SELECT COUNT(*) FROM connection WHERE pair_key = $1", pairKey).Scan(&existing); err != nil {
		logger.Log.WithError(err).Error("failed to check connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "A connection with this user already exists")
		return
	}

	conn := models.Connection{
		ID:              auth.GenerateID(),
		UserID:          callerID,
		ConnectedUserID: req.UserID,
		Status:          models.ConnectionPending,
		CreatedAt:       now(),
	}
	err = insertConnection(tx, conn)
	if err == errConflict {
		middleware.ErrorResponse(w, http.StatusConflict, "A connection with this user already exists")
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create connection")
		return
	}

	requester, err := loadUser(tx, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load requester")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	err = notify(tx, req.UserID, models.NotificationConnection, models.TitleConnectionRequest,
		requester.Name+" wants to connect with you", &conn.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert notification")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"connection_id": conn.ID,
		"from":          conn.UserID,
		"to":            conn.ConnectedUserID,
	}).Info("connection requested")

	middleware.JSONResponse(w, http.StatusCreated, conn)
}

// AcceptConnection handles POST /connections/{id}/accept
// Only the addressee may accept, and only while the request is pending.
func (h *ConnectionHandler) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	connID := r.PathValue("id")
	if err := lockRow(tx, h.cfg.DatabaseType, "connection", connID); err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Connection not found")
		return
	} else if err != nil {
		logger.Log.WithError(err).Error("failed to lock connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	conn, err := loadConnection(tx, connID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if conn.ConnectedUserID != callerID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the recipient can accept a connection request")
		return
	}
	if conn.Status != models.ConnectionPending {
		middleware.ErrorResponse(w, http.StatusConflict, "Connection is not pending")
		return
	}

	_, err = tx.Exec("UPDATE connection SET status = $1 WHERE id = $2", models.ConnectionAccepted, conn.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to accept connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	conn.Status = models.ConnectionAccepted

	// The request has been handled, so its notification is read
	_, err = tx.Exec(`
		UPDATE notification SET read = $1
		WHERE user_id = $2 AND connection_id = $3
	`, true, callerID, conn.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to mark request notification read")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	accepter, err := loadUser(tx, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load accepter")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	err = notify(tx, conn.UserID, models.NotificationConnection, models.TitleConnectionAccepted,
		accepter.Name+" accepted your connection request", &conn.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert notification")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit acceptance")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithField("connection_id", conn.ID).Info("connection accepted")

	middleware.JSONResponse(w, http.StatusOK, conn)
}

// Disconnect handles DELETE /connections/{id}
// Either party may remove a connection or withdraw/decline a request.
func (h *ConnectionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	conn, err := loadConnection(h.db, r.PathValue("id"))
	if err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Connection not found")
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if conn.UserID != callerID && conn.ConnectedUserID != callerID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not a party to this connection")
		return
	}

	if _, err := h.db.Exec("DELETE FROM connection WHERE id = $1", conn.ID); err != nil {
		logger.Log.WithError(err).Error("failed to delete connection")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{"connection_id": conn.ID, "by": callerID}).Info("connection removed")

	w.WriteHeader(http.StatusNoContent)
}

// ListConnections handles GET /connections?status=
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && status != models.ConnectionPending && status != models.ConnectionAccepted {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be pending or accepted")
		return
	}

	conns, err := loadConnections(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load connections")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	result := make([]models.Connection, 0, len(conns))
	for _, c := range conns {
		if status == "" || c.Status == status {
			result = append(result, c)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// insertConnection stores a new request. A second request for the same
// pair, in either direction, returns errConflict.
func insertConnection(db querier, conn models.Connection) error {
	return insertIgnoringConflict(db, `
		INSERT INTO connection (id, user_id, connected_user_id, pair_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pair_key) DO NOTHING
	`, conn.ID, conn.UserID, conn.ConnectedUserID, auth.PairKey(conn.UserID, conn.ConnectedUserID), conn.Status, conn.CreatedAt)
}
