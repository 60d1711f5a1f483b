// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/huddle/models"
)

// MatchPendingConnection returns the pending request a connection-request
// notification refers to, or nil.
//
// A notification that carries a ConnectionID resolves directly and matches
// nothing once that request is no longer pending. Older notifications
// have no reference, so the pending request addressed to
// currentUserID with the closest CreatedAt wins; ties keep the first
// candidate.
func MatchPendingConnection(n models.Notification, connections []models.Connection, currentUserID string) *models.Connection {
	if n.Type != models.NotificationConnection || n.Title != models.TitleConnectionRequest {
		return nil
	}

	var candidates []models.Connection
	for _, c := range connections {
		if c.Status == models.ConnectionPending &&
			c.ConnectedUserID == currentUserID &&
			c.UserID != currentUserID {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	if n.ConnectionID != nil {
		for i := range candidates {
			if candidates[i].ID == *n.ConnectionID {
				return &candidates[i]
			}
		}
		// the referenced request was accepted or withdrawn
		return nil
	}

	best := 0
	bestDiff := absDuration(candidates[0].CreatedAt.Sub(n.CreatedAt))
	for i := 1; i < len(candidates); i++ {
		diff := absDuration(candidates[i].CreatedAt.Sub(n.CreatedAt))
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return &candidates[best]
}

// UnreadCount counts notifications not yet read.
func UnreadCount(notifications []models.Notification) int {
	n := 0
	for _, notif := range notifications {
		if !notif.Read {
			n++
		}
	}
	return n
}

// BuildNotificationsResponse decorates the notification list of
// currentUserID with relative times and matched pending connections.
func BuildNotificationsResponse(currentUserID string, notifications []models.Notification, connections []models.Connection, now time.Time) models.NotificationsResponse {
	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, models.NotificationView{
			Notification:      n,
			Ago:               humanize.RelTime(n.CreatedAt, now, "ago", "from now"),
			PendingConnection: MatchPendingConnection(n, connections, currentUserID),
		})
	}
	return models.NotificationsResponse{
		Notifications: views,
		UnreadCount:   UnreadCount(notifications),
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
