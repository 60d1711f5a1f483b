// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/db"
	"github.com/danielhkuo/huddle/models"
)

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenDSN(cliparse.DatabaseSQLite, filepath.Join(t.TempDir(), "huddle_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    ":memory:",
		DatabaseType:   cliparse.DatabaseSQLite,
		LogLevel:       "error",
		Environment:    "test",
		CloseSweepSpec: "@every 1m",
	}
}

// CreateTestUser inserts a user with the given name and role and returns its ID.
// The email is derived from the name.
func CreateTestUser(t *testing.T, db *sql.DB, name, role string) string {
	t.Helper()

	userID := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO app_user (id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, name, userID+"@example.com", role, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestPost inserts a post authored by userID and returns its ID
func CreateTestPost(t *testing.T, db *sql.DB, userID, content string, createdAt time.Time) string {
	t.Helper()

	postID := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO post (id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`, postID, userID, content, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return postID
}

// AddTestLike records userID as a liker of postID
func AddTestLike(t *testing.T, db *sql.DB, postID, userID string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO post_like (post_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`, postID, userID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test like: %v", err)
	}
}

// CreateTestConnection inserts a connection from userID to connectedUserID
// with the given status and returns its ID
func CreateTestConnection(t *testing.T, db *sql.DB, userID, connectedUserID, status string) string {
	t.Helper()

	connID := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO connection (id, user_id, connected_user_id, pair_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, connID, userID, connectedUserID, auth.PairKey(userID, connectedUserID), status, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test connection: %v", err)
	}

	return connID
}

// CreateTestPoll inserts an active poll with one option per label and
// returns the poll ID and option IDs in label order
func CreateTestPoll(t *testing.T, db *sql.DB, createdBy string, multi bool, deadline *time.Time, labels ...string) (string, []string) {
	t.Helper()

	pollID := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO poll (id, question, description, created_by, allow_multiple_votes, show_results_before_voting, status, deadline, created_at)
		VALUES ($1, 'Test Poll', '', $2, $3, $4, $5, $6, $7)
	`, pollID, createdBy, multi, false, models.StatusActive, deadline, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	optionIDs := make([]string, 0, len(labels))
	for i, label := range labels {
		optionID := auth.GenerateID()
		_, err := db.Exec(`
			INSERT INTO poll_option (id, poll_id, position, text)
			VALUES ($1, $2, $3, $4)
		`, optionID, pollID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return pollID, optionIDs
}

// AddTestVote records userID as a voter for optionID
func AddTestVote(t *testing.T, db *sql.DB, pollID, optionID, userID string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO poll_vote (poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, optionID, userID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// CreateTestForm inserts an active feedback form and returns its ID
func CreateTestForm(t *testing.T, db *sql.DB, createdBy, title string, fields []models.FeedbackFormField, deadline *time.Time) string {
	t.Helper()

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Failed to encode form fields: %v", err)
	}

	formID := auth.GenerateID()
	_, err = db.Exec(`
		INSERT INTO feedback_form (id, title, description, fields, created_by, status, deadline, created_at)
		VALUES ($1, $2, '', $3, $4, $5, $6, $7)
	`, formID, title, string(fieldsJSON), createdBy, models.StatusActive, deadline, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test form: %v", err)
	}

	return formID
}

// CreateTestSurvey inserts an active survey and returns its ID
func CreateTestSurvey(t *testing.T, db *sql.DB, createdBy string, questions []string, deadline *time.Time) string {
	t.Helper()

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("Failed to encode survey questions: %v", err)
	}

	surveyID := auth.GenerateID()
	_, err = db.Exec(`
		INSERT INTO survey (id, title, description, questions, created_by, status, deadline, created_at)
		VALUES ($1, 'Test Survey', '', $2, $3, $4, $5, $6)
	`, surveyID, string(questionsJSON), createdBy, models.StatusActive, deadline, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	return surveyID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AsUser returns headers identifying the caller as userID
func AsUser(userID string) map[string]string {
	return map[string]string{auth.UserHeader: userID}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
