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

func connectionRequest(at time.Time) models.Notification {
	return models.Notification{
		ID:        "n1",
		UserID:    "me",
		Type:      models.NotificationConnection,
		Title:     models.TitleConnectionRequest,
		CreatedAt: at,
	}
}

func TestMatchPendingConnectionNearestTimestamp(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	connections := []models.Connection{
		{ID: "far", UserID: "a", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base.Add(-time.Hour)},
		{ID: "near", UserID: "b", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base.Add(2 * time.Second)},
		{ID: "accepted", UserID: "c", ConnectedUserID: "me", Status: models.ConnectionAccepted, CreatedAt: base},
		{ID: "outgoing", UserID: "me", ConnectedUserID: "d", Status: models.ConnectionPending, CreatedAt: base},
		{ID: "self", UserID: "me", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base},
	}

	got := MatchPendingConnection(connectionRequest(base), connections, "me")
	require.NotNil(t, got)
	assert.Equal(t, "near", got.ID)
}

func TestMatchPendingConnectionTieKeepsFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	connections := []models.Connection{
		{ID: "before", UserID: "a", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base.Add(-time.Minute)},
		{ID: "after", UserID: "b", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base.Add(time.Minute)},
	}

	got := MatchPendingConnection(connectionRequest(base), connections, "me")
	require.NotNil(t, got)
	assert.Equal(t, "before", got.ID)
}

func TestMatchPendingConnectionDiscriminator(t *testing.T) {
	base := time.Now()
	connections := []models.Connection{
		{ID: "c1", UserID: "a", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base},
	}

	accepted := connectionRequest(base)
	accepted.Title = models.TitleConnectionAccepted
	assert.Nil(t, MatchPendingConnection(accepted, connections, "me"))

	like := connectionRequest(base)
	like.Type = models.NotificationLike
	assert.Nil(t, MatchPendingConnection(like, connections, "me"))

	assert.Nil(t, MatchPendingConnection(connectionRequest(base), nil, "me"))
}

func TestMatchPendingConnectionByReference(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	connections := []models.Connection{
		{ID: "near", UserID: "a", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base},
		{ID: "referenced", UserID: "b", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: base.Add(-24 * time.Hour)},
	}

	n := connectionRequest(base)
	ref := "referenced"
	n.ConnectionID = &ref

	got := MatchPendingConnection(n, connections, "me")
	require.NotNil(t, got)
	assert.Equal(t, "referenced", got.ID)

	// Once the referenced request is gone the notification matches nothing
	gone := "withdrawn"
	n.ConnectionID = &gone
	assert.Nil(t, MatchPendingConnection(n, connections, "me"))
}

func TestUnreadCount(t *testing.T) {
	notifications := []models.Notification{
		{ID: "1", Read: false},
		{ID: "2", Read: true},
		{ID: "3", Read: false},
	}
	assert.Equal(t, 2, UnreadCount(notifications))
	assert.Equal(t, 0, UnreadCount(nil))
}

func TestBuildNotificationsResponse(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	notifications := []models.Notification{
		connectionRequest(now.Add(-3 * time.Minute)),
		{ID: "n2", UserID: "me", Type: models.NotificationLike, Title: models.TitleNewLike, Read: true, CreatedAt: now.Add(-2 * time.Hour)},
	}
	connections := []models.Connection{
		{ID: "c1", UserID: "a", ConnectedUserID: "me", Status: models.ConnectionPending, CreatedAt: now.Add(-3 * time.Minute)},
	}

	resp := BuildNotificationsResponse("me", notifications, connections, now)

	assert.Equal(t, 1, resp.UnreadCount)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, "3 minutes ago", resp.Notifications[0].Ago)
	require.NotNil(t, resp.Notifications[0].PendingConnection)
	assert.Equal(t, "c1", resp.Notifications[0].PendingConnection.ID)
	assert.Equal(t, "2 hours ago", resp.Notifications[1].Ago)
	assert.Nil(t, resp.Notifications[1].PendingConnection)
}
