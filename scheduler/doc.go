// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package scheduler runs the cron job that closes polls, feedback forms
// and surveys once their deadline passes.
//
//	sweeper := scheduler.NewDeadlineSweeper(conn, cfg.CloseSweepSpec)
//	if err := sweeper.Start(); err != nil {
//		...
//	}
//	defer sweeper.Stop()
package scheduler
