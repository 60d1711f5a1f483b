// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if isBlank(req.Question) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question is required")
		return
	}
	var options []string
	for _, opt := range req.Options {
		if !isBlank(opt) {
			options = append(options, strings.TrimSpace(opt))
		}
	}
	if len(options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Poll must have at least 2 options")
		return
	}
	created := now()
	if req.Deadline != nil && !req.Deadline.After(created) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "deadline must be in the future")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	pollID := auth.GenerateID()
	_, err = tx.Exec(`
		INSERT INTO poll (id, question, description, created_by, allow_multiple_votes, show_results_before_voting, status, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, pollID, strings.TrimSpace(req.Question), req.Description, callerID,
		req.AllowMultipleVotes, req.ShowResultsBeforeVoting, models.StatusActive,
		nullableTime(req.Deadline), created)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for i, text := range options {
		_, err = tx.Exec(`
			INSERT INTO poll_option (id, poll_id, position, text)
			VALUES ($1, $2, $3, $4)
		`, auth.GenerateID(), pollID, i, text)
		if err != nil {
			logger.Log.WithError(err).Error("failed to insert option")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
	}

	if err := announce(tx, callerID, models.NotificationPoll, models.TitleNewPoll, strings.TrimSpace(req.Question)); err != nil {
		logger.Log.WithError(err).Error("failed to announce poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"poll_id": pollID,
		"options": len(options),
		"multi":   req.AllowMultipleVotes,
	}).Info("poll created")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: pollID})
}

// ListPolls handles GET /polls?status=
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	polls, err := loadPolls(h.db, status)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load polls")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	at := now()
	views := make([]models.PollView, 0, len(polls))
	for _, p := range polls {
		views = append(views, viewmodel.BuildPollView(p, callerID, at))
	}

	middleware.JSONResponse(w, http.StatusOK, views)
}

// GetPoll handles GET /polls/{id}
// Vote counts are hidden until the caller may see results.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	poll, err := loadPoll(h.db, r.PathValue("id"))
	if err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, viewmodel.BuildPollView(poll, callerID, now()))
}

// Vote handles POST /polls/{id}/votes
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Votes on one poll are applied one at a time so a single-choice poll
	// never ends up with two votes from the same user
	pollID := r.PathValue("id")
	if err := lockRow(tx, h.cfg.DatabaseType, "poll", pollID); err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	} else if err != nil {
		logger.Log.WithError(err).Error("failed to lock poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	poll, err := loadPoll(tx, pollID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	before := make(map[string]bool, len(poll.Options))
	for _, opt := range poll.Options {
		before[opt.ID] = opt.Voters.Has(callerID)
	}

	at := now()
	if err := viewmodel.ApplyVote(&poll, callerID, req.OptionID, at); err != nil {
		switch {
		case errors.Is(err, viewmodel.ErrNotActive):
			middleware.ErrorResponse(w, http.StatusConflict, "Poll is not accepting votes")
		case errors.Is(err, viewmodel.ErrUnknownOption):
			middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown option")
		default:
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to vote")
		}
		return
	}

	// Write only the difference so earlier voters keep their order
	for _, opt := range poll.Options {
		has := opt.Voters.Has(callerID)
		switch {
		case has && !before[opt.ID]:
			_, err = tx.Exec(`
				INSERT INTO poll_vote (poll_id, option_id, user_id, created_at)
				VALUES ($1, $2, $3, $4)
			`, poll.ID, opt.ID, callerID, at)
		case !has && before[opt.ID]:
			_, err = tx.Exec("DELETE FROM poll_vote WHERE option_id = $1 AND user_id = $2", opt.ID, callerID)
		}
		if err != nil {
			logger.Log.WithError(err).Error("failed to record vote")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to vote")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit vote")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{"poll_id": poll.ID, "option_id": req.OptionID}).Info("vote recorded")

	middleware.JSONResponse(w, http.StatusOK, viewmodel.BuildPollView(poll, callerID, at))
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}
	pollID := r.PathValue("id")

	if code, msg := closeItem(h.db, "poll", pollID, callerID); code != http.StatusOK {
		middleware.ErrorResponse(w, code, msg)
		return
	}

	poll, err := loadPoll(h.db, pollID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to reload poll")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithField("poll_id", pollID).Info("poll closed")

	middleware.JSONResponse(w, http.StatusOK, viewmodel.BuildPollView(poll, callerID, now()))
}

// loadPoll reads a poll with its options in creation order and each
// option's voters in the order they voted
func loadPoll(db querier, id string) (models.Poll, error) {
	var p models.Poll
	var deadline, closedAt sql.NullTime
	err := db.QueryRow(`
		SELECT id, question, description, created_by, allow_multiple_votes,
		       show_results_before_voting, status, deadline, closed_at, created_at
		FROM poll WHERE id = $1
	`, id).Scan(&p.ID, &p.Question, &p.Description, &p.CreatedBy, &p.AllowMultipleVotes,
		&p.ShowResultsBeforeVoting, &p.Status, &deadline, &closedAt, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, errNotFound
	}
	if err != nil {
		return p, err
	}
	p.Deadline = timePtr(deadline)
	p.ClosedAt = timePtr(closedAt)

	rows, err := db.Query("SELECT id, text FROM poll_option WHERE poll_id = $1 ORDER BY position", id)
	if err != nil {
		return p, err
	}
	index := map[string]int{}
	for rows.Next() {
		opt := models.PollOption{PollID: id}
		if err := rows.Scan(&opt.ID, &opt.Text); err != nil {
			rows.Close()
			return p, err
		}
		index[opt.ID] = len(p.Options)
		p.Options = append(p.Options, opt)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return p, err
	}
	rows.Close()

	type vote struct {
		optionID, userID string
		at               time.Time
	}
	rows, err = db.Query("SELECT option_id, user_id, created_at FROM poll_vote WHERE poll_id = $1", id)
	if err != nil {
		return p, err
	}
	defer rows.Close()
	var votes []vote
	for rows.Next() {
		var v vote
		if err := rows.Scan(&v.optionID, &v.userID, &v.at); err != nil {
			return p, err
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return p, err
	}

	sort.SliceStable(votes, func(i, j int) bool { return votes[i].at.Before(votes[j].at) })
	for _, v := range votes {
		if i, ok := index[v.optionID]; ok {
			p.Options[i].Voters.Add(v.userID)
		}
	}
	for i := range p.Options {
		p.Options[i].Votes = p.Options[i].Voters.Len()
	}
	return p, nil
}

// loadPolls returns polls newest first, optionally filtered by status
func loadPolls(db querier, status string) ([]models.Poll, error) {
	rows, err := db.Query("SELECT id, status FROM poll")
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id, s string
		if err := rows.Scan(&id, &s); err != nil {
			rows.Close()
			return nil, err
		}
		if status == "" || s == status {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	polls := make([]models.Poll, 0, len(ids))
	for _, id := range ids {
		p, err := loadPoll(db, id)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	sort.SliceStable(polls, func(i, j int) bool { return polls[i].CreatedAt.After(polls[j].CreatedAt) })
	return polls, nil
}
