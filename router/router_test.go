// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/testutil"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "huddle API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	// Without X-User-ID every handler answers, usually with 401
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/users"},
		{"GET", "/users"},
		{"GET", "/users/test-id"},

		{"POST", "/posts"},
		{"GET", "/feed"},
		{"POST", "/posts/test-id/like"},
		{"POST", "/posts/test-id/comments"},

		{"POST", "/connections"},
		{"GET", "/connections"},
		{"POST", "/connections/test-id/accept"},
		{"DELETE", "/connections/test-id"},

		{"GET", "/notifications"},
		{"POST", "/notifications/read-all"},
		{"POST", "/notifications/test-id/read"},

		{"POST", "/polls"},
		{"GET", "/polls"},
		{"GET", "/polls/test-id"},
		{"POST", "/polls/test-id/votes"},
		{"POST", "/polls/test-id/close"},

		{"POST", "/forms"},
		{"GET", "/forms"},
		{"GET", "/forms/test-id"},
		{"POST", "/forms/test-id/close"},
		{"POST", "/forms/test-id/responses"},
		{"GET", "/forms/test-id/responses"},
		{"GET", "/forms/test-id/responses/resp-id"},
		{"GET", "/forms/test-id/export"},

		{"POST", "/surveys"},
		{"GET", "/surveys"},
		{"POST", "/surveys/test-id/responses"},
		{"GET", "/surveys/test-id/responses"},
		{"POST", "/surveys/test-id/close"},

		{"POST", "/feedback"},
		{"GET", "/feedback"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/polls/test-id"},
		{"PUT", "/connections/test-id"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestCallerHeaderRequired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mux := NewRouter(db, testutil.GetTestConfig())

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", "/feed", nil, nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", "/feed", nil, testutil.AsUser("ghost")))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	aliceID := testutil.CreateTestUser(t, db, "Alice", models.RoleEmployee)
	pollID, _ := testutil.CreateTestPoll(t, db, aliceID, false, nil, "Pizza", "Sushi")

	mux := NewRouter(db, cfg)

	t.Run("poll ID extraction", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", "/polls/"+pollID, nil, testutil.AsUser(aliceID)))

		testutil.AssertStatus(t, w, http.StatusOK)

		var view models.PollView
		testutil.AssertJSON(t, w, &view)
		if view.ID != pollID {
			t.Errorf("Expected poll %s, got %s", pollID, view.ID)
		}
	})

	t.Run("unknown poll", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", "/polls/nope", nil, testutil.AsUser(aliceID)))

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
