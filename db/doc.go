// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Drivers

Open picks the driver from cliparse.Config.DatabaseType:

  - sqlite: modernc.org/sqlite, pure Go; foreign keys and a busy timeout
    are enabled through DSN pragmas and the pool is limited to one
    connection
  - postgres: github.com/lib/pq with a pooled connection

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on both databases. Placeholders are written as
$1, $2, ... which both drivers accept.

# Tables

  - app_user: roster
  - post, post_comment, post_like: feed
  - connection: requests and accepted connections, one per unordered pair
  - notification: per-user notification center
  - poll, poll_option, poll_vote: polls and their voter sets
  - survey, survey_response: free-text surveys
  - feedback_form, feedback_form_response: structured forms
  - feedback: free-form feedback

# Deadline Sweep

CloseExpired closes active polls, forms and surveys whose deadline passed.
The scheduler package runs it on a cron spec.
*/
package db
