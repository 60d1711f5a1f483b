// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"errors"
	"math"
	"time"

	"github.com/danielhkuo/huddle/models"
)

var (
	ErrNotActive     = errors.New("not accepting responses")
	ErrUnknownOption = errors.New("unknown poll option")
)

// CanClose reports whether status may move to closed. The lifecycle is
// active -> closed only.
func CanClose(status string) bool {
	return status == models.StatusActive
}

// IsPastDeadline reports whether a deadline is set and has passed.
func IsPastDeadline(deadline *time.Time, now time.Time) bool {
	return deadline != nil && now.After(*deadline)
}

// AcceptsResponses reports whether an active item with the given deadline
// still takes votes or submissions.
func AcceptsResponses(status string, deadline *time.Time, now time.Time) bool {
	return status == models.StatusActive && !IsPastDeadline(deadline, now)
}

// HasVoted reports whether userID voted for any option of poll.
func HasVoted(poll models.Poll, userID string) bool {
	for _, opt := range poll.Options {
		if opt.Voters.Has(userID) {
			return true
		}
	}
	return false
}

// ShowPollResults decides whether userID may see vote counts.
func ShowPollResults(poll models.Poll, userID string, now time.Time) bool {
	return poll.ShowResultsBeforeVoting ||
		HasVoted(poll, userID) ||
		poll.Status == models.StatusClosed ||
		IsPastDeadline(poll.Deadline, now)
}

// ApplyVote records userID's vote for optionID on poll in place.
// Multi-vote polls toggle the option. Single-choice polls move the vote
// to optionID; voting the current choice again changes nothing.
func ApplyVote(poll *models.Poll, userID, optionID string, now time.Time) error {
	if !AcceptsResponses(poll.Status, poll.Deadline, now) {
		return ErrNotActive
	}

	target := -1
	for i := range poll.Options {
		if poll.Options[i].ID == optionID {
			target = i
			break
		}
	}
	if target < 0 {
		return ErrUnknownOption
	}

	if poll.AllowMultipleVotes {
		poll.Options[target].Voters.Toggle(userID)
	} else {
		for i := range poll.Options {
			if i != target {
				poll.Options[i].Voters.Remove(userID)
			}
		}
		poll.Options[target].Voters.Add(userID)
	}

	for i := range poll.Options {
		poll.Options[i].Votes = poll.Options[i].Voters.Len()
	}
	return nil
}

// BuildPollView renders poll for userID, hiding counts unless
// ShowPollResults allows them.
func BuildPollView(poll models.Poll, userID string, now time.Time) models.PollView {
	show := ShowPollResults(poll, userID, now)
	view := models.PollView{
		ID:                 poll.ID,
		Question:           poll.Question,
		Description:        poll.Description,
		CreatedBy:          poll.CreatedBy,
		Status:             poll.Status,
		AllowMultipleVotes: poll.AllowMultipleVotes,
		Deadline:           poll.Deadline,
		HasVoted:           HasVoted(poll, userID),
		ShowResults:        show,
		Options:            make([]models.PollOptionView, 0, len(poll.Options)),
		CreatedAt:          poll.CreatedAt,
	}

	total := 0
	for _, opt := range poll.Options {
		total += opt.Votes
	}
	if show {
		view.TotalVotes = &total
	}

	for _, opt := range poll.Options {
		ov := models.PollOptionView{
			ID:        opt.ID,
			Text:      opt.Text,
			VotedByMe: opt.Voters.Has(userID),
		}
		if show {
			votes := opt.Votes
			pct := percentage(votes, total)
			ov.Votes = &votes
			ov.Percentage = &pct
		}
		view.Options = append(view.Options, ov)
	}
	return view
}

func percentage(votes, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(votes) * 100 / float64(total)))
}
