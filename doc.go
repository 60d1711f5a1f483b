// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Huddle API server.

Huddle is the backend of an internal workplace app: team roster, feed with
likes and comments, connections, a notification center, polls, surveys,
feedback forms and free-form feedback.

# Starting the Server

The server reads flags, environment variables and an optional .env file:

	DATABASE_URL=huddle.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - LOG_LEVEL (-log-level): logrus level (default: info)
  - ENVIRONMENT: production and staging switch logs to JSON
  - CLOSE_SWEEP_SPEC (-sweep): cron spec for the deadline sweeper (default: @every 1m)

# Architecture

  - handlers: HTTP request handlers
  - viewmodel: pure derivations behind the handlers' responses
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Entities, request and response types
  - auth: Caller identity and id generation
  - db: Driver selection, schema creation, deadline sweep
  - scheduler: Cron job running the deadline sweep
  - logger: logrus configuration
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
