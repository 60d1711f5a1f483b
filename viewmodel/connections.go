// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import "github.com/danielhkuo/huddle/models"

// ConnectionResolution is the status of a target user relative to the
// current user, plus the record it was derived from.
type ConnectionResolution struct {
	Status     string
	Connection *models.Connection
}

// ResolveConnection finds the connection between currentUserID and
// targetUserID in either direction. Unknown stored statuses resolve to
// none without a connection.
func ResolveConnection(currentUserID, targetUserID string, connections []models.Connection) ConnectionResolution {
	for i := range connections {
		c := connections[i]
		forward := c.UserID == currentUserID && c.ConnectedUserID == targetUserID
		backward := c.UserID == targetUserID && c.ConnectedUserID == currentUserID
		if !forward && !backward {
			continue
		}

		switch c.Status {
		case models.ConnectionAccepted:
			return ConnectionResolution{Status: models.ConnectionStatusConnected, Connection: &c}
		case models.ConnectionPending:
			return ConnectionResolution{Status: models.ConnectionStatusPending, Connection: &c}
		default:
			return ConnectionResolution{Status: models.ConnectionStatusNone}
		}
	}

	return ConnectionResolution{Status: models.ConnectionStatusNone}
}

// BuildUserView pairs a user with its connection status as seen by
// currentUserID.
func BuildUserView(currentUserID string, user models.User, connections []models.Connection) models.UserView {
	res := ResolveConnection(currentUserID, user.ID, connections)
	view := models.UserView{
		User:             user,
		ConnectionStatus: res.Status,
	}
	if res.Connection != nil {
		id := res.Connection.ID
		view.ConnectionID = &id
	}
	return view
}
