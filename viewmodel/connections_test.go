// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/huddle/models"
)

func TestResolveConnection(t *testing.T) {
	now := time.Now()
	connections := []models.Connection{
		{ID: "c1", UserID: "alice", ConnectedUserID: "bob", Status: models.ConnectionAccepted, CreatedAt: now},
		{ID: "c2", UserID: "carol", ConnectedUserID: "alice", Status: models.ConnectionPending, CreatedAt: now},
		{ID: "c3", UserID: "alice", ConnectedUserID: "dave", Status: "rejected", CreatedAt: now},
	}

	tests := []struct {
		name       string
		current    string
		target     string
		wantStatus string
		wantID     string
	}{
		{"accepted outgoing", "alice", "bob", models.ConnectionStatusConnected, "c1"},
		{"accepted incoming", "bob", "alice", models.ConnectionStatusConnected, "c1"},
		{"pending incoming", "alice", "carol", models.ConnectionStatusPending, "c2"},
		{"pending outgoing", "carol", "alice", models.ConnectionStatusPending, "c2"},
		{"no record", "alice", "erin", models.ConnectionStatusNone, ""},
		{"unknown status", "alice", "dave", models.ConnectionStatusNone, ""},
		{"third party", "bob", "carol", models.ConnectionStatusNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveConnection(tt.current, tt.target, connections)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantID == "" {
				assert.Nil(t, res.Connection)
				return
			}
			require.NotNil(t, res.Connection)
			assert.Equal(t, tt.wantID, res.Connection.ID)
		})
	}
}

func TestResolveConnectionIsSymmetric(t *testing.T) {
	connections := []models.Connection{
		{ID: "c1", UserID: "u1", ConnectedUserID: "u2", Status: models.ConnectionPending},
		{ID: "c2", UserID: "u3", ConnectedUserID: "u1", Status: models.ConnectionAccepted},
		{ID: "c3", UserID: "u2", ConnectedUserID: "u3", Status: "blocked"},
	}
	users := []string{"u1", "u2", "u3", "u4"}

	for _, a := range users {
		for _, b := range users {
			ab := ResolveConnection(a, b, connections)
			ba := ResolveConnection(b, a, connections)
			assert.Equal(t, ab.Status, ba.Status, "%s/%s", a, b)
			if ab.Connection == nil {
				assert.Nil(t, ba.Connection)
				continue
			}
			require.NotNil(t, ba.Connection)
			assert.Equal(t, ab.Connection.ID, ba.Connection.ID)
		}
	}
}

func TestResolveConnectionReturnsCopy(t *testing.T) {
	connections := []models.Connection{
		{ID: "c1", UserID: "u1", ConnectedUserID: "u2", Status: models.ConnectionPending},
	}

	res := ResolveConnection("u1", "u2", connections)
	require.NotNil(t, res.Connection)
	res.Connection.Status = models.ConnectionAccepted

	assert.Equal(t, models.ConnectionPending, connections[0].Status)
}

func TestBuildUserView(t *testing.T) {
	user := models.User{ID: "bob", Name: "Bob"}
	connections := []models.Connection{
		{ID: "c1", UserID: "alice", ConnectedUserID: "bob", Status: models.ConnectionPending},
	}

	view := BuildUserView("alice", user, connections)
	assert.Equal(t, models.ConnectionStatusPending, view.ConnectionStatus)
	require.NotNil(t, view.ConnectionID)
	assert.Equal(t, "c1", *view.ConnectionID)

	view = BuildUserView("carol", user, connections)
	assert.Equal(t, models.ConnectionStatusNone, view.ConnectionStatus)
	assert.Nil(t, view.ConnectionID)
}
