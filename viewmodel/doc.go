// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package viewmodel derives ready-to-render views from entity snapshots.

Every function is pure: it reads the slices it is given and never touches
the database. Handlers load a snapshot, call into this package, and
return the result as JSON.

# Connections

	res := viewmodel.ResolveConnection(me, other, connections)
	// res.Status is "none", "pending" or "connected"

# Likes

	text := viewmodel.DescribeLikes(me, post.Likes.IDs(), viewmodel.UsersByID(users))
	// "You and 2 others liked this"

# Notifications

MatchPendingConnection links a "Connection Request" notification to the
pending request it announces, so the notification center can offer
accept and decline buttons.

# Search

	matches := viewmodel.Filter(users, query, viewmodel.UserFields...)

# Forms

FindMissingRequired validates a submission. ToTabularRow flattens a
response for export with CSVStyle or DetailStyle.

# Polls

ShowPollResults gates vote counts; ApplyVote applies single-choice or
multi-vote semantics.
*/
package viewmodel
