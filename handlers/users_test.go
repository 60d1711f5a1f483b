// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewUserHandler(db)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "valid user",
			requestBody: models.CreateUserRequest{
				Name:       "Alice Smith",
				Email:      "alice@example.com",
				Role:       models.RoleHOD,
				Department: strPtr("Engineering"),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "role defaults to employee",
			requestBody:    models.CreateUserRequest{Name: "Bob", Email: "bob@example.com"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate email",
			requestBody:    models.CreateUserRequest{Name: "Alice Again", Email: "alice@example.com"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing name",
			requestBody:    models.CreateUserRequest{Email: "carol@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			requestBody:    models.CreateUserRequest{Name: "Carol", Email: "carol"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown role",
			requestBody:    models.CreateUserRequest{Name: "Carol", Email: "carol@example.com", Role: "intern"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	// Subtests run in order, so the duplicate case sees the first user
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(handler.CreateUser, testutil.MakeRequest("POST", "/users", tt.requestBody, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.CreatedResponse
				testutil.AssertJSON(t, w, &resp)
				assert.NotEmpty(t, resp.ID)
			}
		})
	}

	var role string
	require.NoError(t, db.QueryRow("SELECT role FROM app_user WHERE email = $1", "bob@example.com").Scan(&role))
	assert.Equal(t, models.RoleEmployee, role)
}

func TestListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewUserHandler(db)

	alice := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	bob := testutil.CreateTestUser(t, db, "Bob", models.RoleEmployee)
	carol := testutil.CreateTestUser(t, db, "Carol", models.RoleEmployee)
	dave := testutil.CreateTestUser(t, db, "Dave", models.RoleHOD)

	testutil.CreateTestConnection(t, db, alice, bob, models.ConnectionAccepted)
	pendingID := testutil.CreateTestConnection(t, db, carol, alice, models.ConnectionPending)

	t.Run("connection status per user", func(t *testing.T) {
		w := serve(handler.ListUsers, testutil.MakeRequest("GET", "/users", nil, testutil.AsUser(alice)))
		testutil.AssertStatus(t, w, http.StatusOK)

		var views []models.UserView
		testutil.AssertJSON(t, w, &views)
		require.Len(t, views, 3, "caller is not listed")

		byID := map[string]models.UserView{}
		for _, v := range views {
			byID[v.User.ID] = v
		}
		assert.Equal(t, models.ConnectionStatusConnected, byID[bob].ConnectionStatus)
		assert.Equal(t, models.ConnectionStatusPending, byID[carol].ConnectionStatus)
		require.NotNil(t, byID[carol].ConnectionID)
		assert.Equal(t, pendingID, *byID[carol].ConnectionID)
		assert.Equal(t, models.ConnectionStatusNone, byID[dave].ConnectionStatus)
		assert.Nil(t, byID[dave].ConnectionID)
	})

	t.Run("search query", func(t *testing.T) {
		w := serve(handler.ListUsers, testutil.MakeRequest("GET", "/users?q=CAR", nil, testutil.AsUser(alice)))
		testutil.AssertStatus(t, w, http.StatusOK)

		var views []models.UserView
		testutil.AssertJSON(t, w, &views)
		require.Len(t, views, 1)
		assert.Equal(t, carol, views[0].User.ID)
	})

	t.Run("role filter", func(t *testing.T) {
		w := serve(handler.ListUsers, testutil.MakeRequest("GET", "/users?role=hod", nil, testutil.AsUser(alice)))
		testutil.AssertStatus(t, w, http.StatusOK)

		var views []models.UserView
		testutil.AssertJSON(t, w, &views)
		require.Len(t, views, 1)
		assert.Equal(t, dave, views[0].User.ID)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := serve(handler.ListUsers, testutil.MakeRequest("GET", "/users?role=intern", nil, testutil.AsUser(alice)))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("missing caller", func(t *testing.T) {
		w := serve(handler.ListUsers, testutil.MakeRequest("GET", "/users", nil, nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestGetUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewUserHandler(db)

	alice := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	bob := testutil.CreateTestUser(t, db, "Bob", models.RoleAdmin)
	testutil.CreateTestConnection(t, db, bob, alice, models.ConnectionAccepted)

	t.Run("found", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/users/"+bob, nil, testutil.AsUser(alice))
		w := serve(handler.GetUser, req, "id", bob)
		testutil.AssertStatus(t, w, http.StatusOK)

		var view models.UserView
		testutil.AssertJSON(t, w, &view)
		assert.Equal(t, "Bob", view.User.Name)
		assert.Equal(t, models.RoleAdmin, view.User.Role)
		assert.Equal(t, models.ConnectionStatusConnected, view.ConnectionStatus)
	})

	t.Run("not found", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/users/missing", nil, testutil.AsUser(alice))
		w := serve(handler.GetUser, req, "id", "missing")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
