// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("already exists")
)

// lockQuery selects one row of table by id. On Postgres the row stays
// locked until the transaction ends; SQLite already runs one writer at a
// time.
func lockQuery(dbType, table string) string {
	q := "SELECT id FROM " + table + " WHERE id = $1"
	if dbType == cliparse.DatabasePostgres {
		q += " FOR UPDATE"
	}
	return q
}

// lockRow serializes writers that read and then modify the row table.id
// or its children. It returns errNotFound for a missing row.
func lockRow(tx *sql.Tx, dbType, table, id string) error {
	var got string
	err := tx.QueryRow(lockQuery(dbType, table), id).Scan(&got)
	if err == sql.ErrNoRows {
		return errNotFound
	}
	return err
}

// insertIgnoringConflict runs an INSERT ... ON CONFLICT DO NOTHING and
// returns errConflict when the row was already there
func insertIgnoringConflict(db querier, query string, args ...any) error {
	res, err := db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errConflict
	}
	return nil
}

// requireCaller reads X-User-ID and checks that it is a well-formed id of
// a user on the roster. On failure it writes a 401 and returns false.
func requireCaller(w http.ResponseWriter, r *http.Request, db querier) (string, bool) {
	userID, err := auth.CallerID(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return "", false
	}
	if !auth.IsValidID(userID) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Malformed "+auth.UserHeader+" header")
		return "", false
	}

	var exists int
	err = db.QueryRow("SELECT 1 FROM app_user WHERE id = $1", userID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown user")
		return "", false
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to look up caller")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}

	return userID, true
}

// now is the clock used by handlers, UTC so SQLite text timestamps sort
func now() time.Time {
	return time.Now().UTC()
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

const userColumns = "id, name, email, role, department, position, bio, avatar_url, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var department, position, bio, avatarURL sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &department, &position, &bio, &avatarURL, &u.CreatedAt); err != nil {
		return u, err
	}
	u.Department = stringPtr(department)
	u.Position = stringPtr(position)
	u.Bio = stringPtr(bio)
	u.AvatarURL = stringPtr(avatarURL)
	return u, nil
}

// loadUsers returns the whole roster ordered by name
func loadUsers(db querier) ([]models.User, error) {
	rows, err := db.Query("SELECT " + userColumns + " FROM app_user ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func loadUser(db querier, id string) (models.User, error) {
	u, err := scanUser(db.QueryRow("SELECT "+userColumns+" FROM app_user WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return u, errNotFound
	}
	return u, err
}

const connectionColumns = "id, user_id, connected_user_id, status, created_at"

func scanConnection(row rowScanner) (models.Connection, error) {
	var c models.Connection
	err := row.Scan(&c.ID, &c.UserID, &c.ConnectedUserID, &c.Status, &c.CreatedAt)
	return c, err
}

// loadConnections returns every connection record involving userID, in
// creation order
func loadConnections(db querier, userID string) ([]models.Connection, error) {
	rows, err := db.Query(`
		SELECT `+connectionColumns+` FROM connection
		WHERE user_id = $1 OR connected_user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := []models.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func loadConnection(db querier, id string) (models.Connection, error) {
	c, err := scanConnection(db.QueryRow("SELECT "+connectionColumns+" FROM connection WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return c, errNotFound
	}
	return c, err
}

// notify inserts an unread notification for userID
func notify(db querier, userID, kind, title, message string, connectionID *string) error {
	_, err := db.Exec(`
		INSERT INTO notification (id, user_id, type, title, message, read, connection_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, auth.GenerateID(), userID, kind, title, message, false, nullableString(connectionID), now())
	return err
}

// announce notifies every user except actorID
func announce(db querier, actorID, kind, title, message string) error {
	rows, err := db.Query("SELECT id FROM app_user WHERE id <> $1", actorID)
	if err != nil {
		return err
	}
	var recipients []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		recipients = append(recipients, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, id := range recipients {
		if err := notify(db, id, kind, title, message, nil); err != nil {
			return err
		}
	}
	return nil
}

// closeItem moves an active poll, form or survey to closed on behalf of
// callerID. table is one of a fixed set of names.
func closeItem(db querier, table, id, callerID string) (int, string) {
	var createdBy, status string
	err := db.QueryRow("SELECT created_by, status FROM "+table+" WHERE id = $1", id).Scan(&createdBy, &status)
	if err == sql.ErrNoRows {
		return http.StatusNotFound, "Not found"
	}
	if err != nil {
		logger.Log.WithError(err).WithField("table", table).Error("failed to query item")
		return http.StatusInternalServerError, "Database error"
	}

	if createdBy != callerID {
		return http.StatusForbidden, "Only the creator can close this"
	}
	if !viewmodel.CanClose(status) {
		return http.StatusConflict, "Already closed"
	}

	_, err = db.Exec("UPDATE "+table+" SET status = $1, closed_at = $2 WHERE id = $3 AND status = $4",
		models.StatusClosed, now(), id, models.StatusActive)
	if err != nil {
		logger.Log.WithError(err).WithField("table", table).Error("failed to close item")
		return http.StatusInternalServerError, "Database error"
	}
	return http.StatusOK, ""
}
