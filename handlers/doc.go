// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Huddle API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - UserHandler: roster and connection status
  - FeedHandler: posts, likes and comments
  - ConnectionHandler: connection requests and their lifecycle
  - NotificationHandler: notification center
  - PollHandler: polls, voting and closing
  - FormHandler: feedback forms, submissions and CSV export
  - SurveyHandler: free-text surveys
  - FeedbackHandler: free-form feedback

Handlers are created via constructor functions. Those that lock rows
inside transactions also take the Config to know the database type:

	pollHandler := handlers.NewPollHandler(db, cfg)
	formHandler := handlers.NewFormHandler(db)

# Caller Identity

The caller comes from the X-User-ID header, must be a well-formed id and
must be on the roster; otherwise the handler answers 401.

# Concurrency

Read-then-write paths (voting, like toggles, accepting a connection) lock
the parent row with SELECT ... FOR UPDATE on PostgreSQL. Inserts guarded
by a unique key use ON CONFLICT DO NOTHING and answer 409 when nothing was
inserted.

# View Models

Handlers load snapshots from the database and pass them through the
viewmodel package: connection status, like summaries, pending connection
matching, search filters, poll result gating and form export all live
there.

# Lifecycle

Polls, forms and surveys are active until their creator closes them or
their deadline passes. Closed or expired items reject votes and
submissions with 409.
*/
package handlers
