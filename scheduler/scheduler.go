// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/db"
	"github.com/danielhkuo/huddle/logger"
)

const sweepTimeout = 30 * time.Second

// DeadlineSweeper periodically closes polls, forms and surveys whose
// deadline has passed.
type DeadlineSweeper struct {
	cronEngine *cron.Cron
	db         *sql.DB
	spec       string
	now        func() time.Time
}

func NewDeadlineSweeper(conn *sql.DB, spec string) *DeadlineSweeper {
	return &DeadlineSweeper{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		db:         conn,
		spec:       spec,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the sweep job and starts the cron engine. It fails if
// the cron expression does not parse.
func (s *DeadlineSweeper) Start() error {
	if _, err := s.cronEngine.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("invalid sweep spec %q: %w", s.spec, err)
	}
	s.cronEngine.Start()
	logger.Log.WithField("spec", s.spec).Info("deadline sweeper started")
	return nil
}

// Stop waits for a running sweep to finish
func (s *DeadlineSweeper) Stop() {
	<-s.cronEngine.Stop().Done()
	logger.Log.Info("deadline sweeper stopped")
}

func (s *DeadlineSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		logger.Log.WithError(err).Error("deadline sweep failed")
	}
}

// Sweep closes everything past its deadline once
func (s *DeadlineSweeper) Sweep(ctx context.Context) (db.ClosedCounts, error) {
	counts, err := db.CloseExpired(ctx, s.db, s.now())
	if err != nil {
		return counts, err
	}
	if counts.Total() > 0 {
		logger.Log.WithFields(logrus.Fields{
			"polls":   counts.Polls,
			"forms":   counts.Forms,
			"surveys": counts.Surveys,
		}).Info("closed expired items")
	}
	return counts, nil
}
