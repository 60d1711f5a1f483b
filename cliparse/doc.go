// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file or PostgreSQL connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - LogLevel: logrus level name (default: info)
  - Environment: development, staging or production (default: development)
  - CloseSweepSpec: cron spec for the deadline sweeper (default: @every 1m)

# CLI Flags and Environment Variables

	-p          PORT
	-d          DATABASE_URL
	-t          DATABASE_TYPE
	-log-level  LOG_LEVEL
	-sweep      CLOSE_SWEEP_SPEC
	            ENVIRONMENT

CLI flags take precedence over environment variables. main loads a .env
file before parsing, without overriding variables already set.
*/
package cliparse
