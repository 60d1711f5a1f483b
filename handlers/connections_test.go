// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/testutil"
)

func TestConnect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewConnectionHandler(db, testutil.GetTestConfig())

	alice := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	bob := testutil.CreateTestUser(t, db, "Bob", models.RoleEmployee)

	tests := []struct {
		name           string
		caller         string
		target         string
		expectedStatus int
	}{
		{"valid request", alice, bob, http.StatusCreated},
		{"duplicate request", alice, bob, http.StatusConflict},
		{"reverse direction of existing pair", bob, alice, http.StatusConflict},
		{"self connection", alice, alice, http.StatusBadRequest},
		{"malformed target", alice, "missing", http.StatusNotFound},
		{"unknown target", alice, auth.GenerateID(), http.StatusNotFound},
		{"missing target", alice, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/connections", models.ConnectRequest{UserID: tt.target}, testutil.AsUser(tt.caller))
			w := serve(handler.Connect, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM connection").Scan(&count))
	assert.Equal(t, 1, count, "one record per unordered pair")

	// The addressee got a request notification pointing at the connection
	var connID, notifConnID, title string
	require.NoError(t, db.QueryRow("SELECT id FROM connection").Scan(&connID))
	require.NoError(t, db.QueryRow(`
		SELECT title, connection_id FROM notification WHERE user_id = $1
	`, bob).Scan(&title, &notifConnID))
	assert.Equal(t, models.TitleConnectionRequest, title)
	assert.Equal(t, connID, notifConnID)
}

func TestAcceptConnection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewConnectionHandler(db, testutil.GetTestConfig())

	alice := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	bob := testutil.CreateTestUser(t, db, "Bob", models.RoleEmployee)

	// Go through Connect so the request notification exists
	req := testutil.MakeRequest("POST", "/connections", models.ConnectRequest{UserID: bob}, testutil.AsUser(alice))
	w := serve(handler.Connect, req)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var conn models.Connection
	testutil.AssertJSON(t, w, &conn)

	accept := func(callerID, connID string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/connections/"+connID+"/accept", nil, testutil.AsUser(callerID))
		return serve(handler.AcceptConnection, req, "id", connID)
	}

	t.Run("requester cannot accept", func(t *testing.T) {
		testutil.AssertStatus(t, accept(alice, conn.ID), http.StatusForbidden)
	})

	t.Run("addressee accepts", func(t *testing.T) {
		w := accept(bob, conn.ID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var accepted models.Connection
		testutil.AssertJSON(t, w, &accepted)
		assert.Equal(t, models.ConnectionAccepted, accepted.Status)

		var read bool
		require.NoError(t, db.QueryRow(`
			SELECT read FROM notification WHERE user_id = $1 AND connection_id = $2
		`, bob, conn.ID).Scan(&read))
		assert.True(t, read, "request notification is marked read")

		var title string
		require.NoError(t, db.QueryRow("SELECT title FROM notification WHERE user_id = $1", alice).Scan(&title))
		assert.Equal(t, models.TitleConnectionAccepted, title)
	})

	t.Run("already accepted", func(t *testing.T) {
		testutil.AssertStatus(t, accept(bob, conn.ID), http.StatusConflict)
	})

	t.Run("unknown connection", func(t *testing.T) {
		testutil.AssertStatus(t, accept(bob, "missing"), http.StatusNotFound)
	})
}

func TestDisconnect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewConnectionHandler(db, testutil.GetTestConfig())

	alice := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	bob := testutil.CreateTestUser(t, db, "Bob", models.RoleEmployee)
	carol := testutil.CreateTestUser(t, db, "Carol", models.RoleEmployee)

	connID := testutil.CreateTestConnection(t, db, alice, bob, models.ConnectionAccepted)

	disconnect := func(callerID string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("DELETE", "/connections/"+connID, nil, testutil.AsUser(callerID))
		return serve(handler.Disconnect, req, "id", connID)
	}

	testutil.AssertStatus(t, disconnect(carol), http.StatusForbidden)
	testutil.AssertStatus(t, disconnect(bob), http.StatusNoContent)
	testutil.AssertStatus(t, disconnect(alice), http.StatusNotFound)

	// The pair may connect again afterwards
	req := testutil.MakeRequest("POST", "/connections", models.ConnectRequest{UserID: alice}, testutil.AsUser(bob))
	testutil.AssertStatus(t, serve(handler.Connect, req), http.StatusCreated)
}

func TestListConnections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewConnectionHandler(db, testutil.GetTestConfig())

	alice := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	bob := testutil.CreateTestUser(t, db, "Bob", models.RoleEmployee)
	carol := testutil.CreateTestUser(t, db, "Carol", models.RoleEmployee)
	dave := testutil.CreateTestUser(t, db, "Dave", models.RoleEmployee)

	testutil.CreateTestConnection(t, db, alice, bob, models.ConnectionAccepted)
	testutil.CreateTestConnection(t, db, carol, alice, models.ConnectionPending)
	testutil.CreateTestConnection(t, db, bob, dave, models.ConnectionAccepted)

	tests := []struct {
		name     string
		query    string
		expected int
		status   int
	}{
		{"all", "", 2, http.StatusOK},
		{"accepted", "?status=accepted", 1, http.StatusOK},
		{"pending", "?status=pending", 1, http.StatusOK},
		{"bad status", "?status=blocked", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(handler.ListConnections, testutil.MakeRequest("GET", "/connections"+tt.query, nil, testutil.AsUser(alice)))
			testutil.AssertStatus(t, w, tt.status)

			if tt.status == http.StatusOK {
				var conns []models.Connection
				testutil.AssertJSON(t, w, &conns)
				assert.Len(t, conns, tt.expected)
			}
		})
	}
}
