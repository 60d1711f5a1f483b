// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

type SurveyHandler struct {
	db *sql.DB
}

func NewSurveyHandler(db *sql.DB) *SurveyHandler {
	return &SurveyHandler{db: db}
}

// CreateSurvey handles POST /surveys
func (h *SurveyHandler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreateSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if isBlank(req.Title) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	var questions []string
	for _, q := range req.Questions {
		if !isBlank(q) {
			questions = append(questions, strings.TrimSpace(q))
		}
	}
	if len(questions) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one question is required")
		return
	}
	created := now()
	if req.Deadline != nil && !req.Deadline.After(created) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "deadline must be in the future")
		return
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to encode questions")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	surveyID := auth.GenerateID()
	_, err = tx.Exec(`
		INSERT INTO survey (id, title, description, questions, created_by, status, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, surveyID, strings.TrimSpace(req.Title), req.Description, string(questionsJSON), callerID,
		models.StatusActive, nullableTime(req.Deadline), created)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert survey")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create survey")
		return
	}

	if err := announce(tx, callerID, models.NotificationSurvey, models.TitleNewSurvey, strings.TrimSpace(req.Title)); err != nil {
		logger.Log.WithError(err).Error("failed to announce survey")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit survey")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{"survey_id": surveyID, "questions": len(questions)}).Info("survey created")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: surveyID})
}

// ListSurveys handles GET /surveys?status=
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r, h.db); !ok {
		return
	}

	status := r.URL.Query().Get("status")
	rows, err := h.db.Query("SELECT " + surveyColumns + " FROM survey")
	if err != nil {
		logger.Log.WithError(err).Error("failed to query surveys")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	surveys := []models.Survey{}
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			logger.Log.WithError(err).Error("failed to scan survey")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if status == "" || s.Status == status {
			surveys = append(surveys, s)
		}
	}
	if err := rows.Err(); err != nil {
		logger.Log.WithError(err).Error("failed to read surveys")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sort.SliceStable(surveys, func(i, j int) bool { return surveys[i].CreatedAt.After(surveys[j].CreatedAt) })

	middleware.JSONResponse(w, http.StatusOK, surveys)
}

// Respond handles POST /surveys/{id}/responses
// One answer per question, one response per user.
func (h *SurveyHandler) Respond(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.SubmitSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	survey, ok := h.survey(w, r.PathValue("id"))
	if !ok {
		return
	}

	submitted := now()
	if !viewmodel.AcceptsResponses(survey.Status, survey.Deadline, submitted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Survey is not accepting responses")
		return
	}
	if len(req.Answers) != len(survey.Questions) {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("expected %d answers, got %d", len(survey.Questions), len(req.Answers)))
		return
	}

	var already int
	err := h.db.QueryRow(`
		SELECT COUNT(*) FROM survey_response WHERE survey_id = $1 AND user_id = $2
	`, survey.ID, callerID).Scan(&already)
	if err != nil {
		logger.Log.WithError(err).Error("failed to check survey response")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if already > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "You have already responded to this survey")
		return
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to encode answers")
		return
	}

	responseID := auth.GenerateID()
	err = insertIgnoringConflict(h.db, `
		INSERT INTO survey_response (id, survey_id, user_id, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (survey_id, user_id) DO NOTHING
	`, responseID, survey.ID, callerID, string(answersJSON), submitted)
	if err == errConflict {
		middleware.ErrorResponse(w, http.StatusConflict, "You have already responded to this survey")
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert survey response")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit response")
		return
	}

	logger.Log.WithFields(logrus.Fields{"survey_id": survey.ID, "response_id": responseID}).Info("survey response submitted")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: responseID})
}

// ListResponses handles GET /surveys/{id}/responses
// Creator and admins only.
func (h *SurveyHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	survey, ok := h.survey(w, r.PathValue("id"))
	if !ok {
		return
	}
	if survey.CreatedBy != callerID {
		caller, err := loadUser(h.db, callerID)
		if err != nil {
			logger.Log.WithError(err).Error("failed to load caller")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if caller.Role != models.RoleAdmin {
			middleware.ErrorResponse(w, http.StatusForbidden, "Only the survey creator can view responses")
			return
		}
	}

	rows, err := h.db.Query(`
		SELECT id, survey_id, user_id, answers, submitted_at
		FROM survey_response WHERE survey_id = $1
	`, survey.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to query survey responses")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	responses := []models.SurveyResponse{}
	for rows.Next() {
		var resp models.SurveyResponse
		var answers string
		if err := rows.Scan(&resp.ID, &resp.SurveyID, &resp.UserID, &answers, &resp.SubmittedAt); err != nil {
			logger.Log.WithError(err).Error("failed to scan survey response")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if err := json.Unmarshal([]byte(answers), &resp.Answers); err != nil {
			logger.Log.WithError(err).WithField("response_id", resp.ID).Error("failed to decode answers")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		logger.Log.WithError(err).Error("failed to read survey responses")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sort.SliceStable(responses, func(i, j int) bool { return responses[i].SubmittedAt.Before(responses[j].SubmittedAt) })

	middleware.JSONResponse(w, http.StatusOK, responses)
}

// CloseSurvey handles POST /surveys/{id}/close
func (h *SurveyHandler) CloseSurvey(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}
	surveyID := r.PathValue("id")

	if code, msg := closeItem(h.db, "survey", surveyID, callerID); code != http.StatusOK {
		middleware.ErrorResponse(w, code, msg)
		return
	}

	survey, ok := h.survey(w, surveyID)
	if !ok {
		return
	}

	logger.Log.WithField("survey_id", surveyID).Info("survey closed")

	middleware.JSONResponse(w, http.StatusOK, survey)
}

func (h *SurveyHandler) survey(w http.ResponseWriter, id string) (models.Survey, bool) {
	s, err := scanSurvey(h.db.QueryRow("SELECT "+surveyColumns+" FROM survey WHERE id = $1", id))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
		return s, false
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load survey")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return s, false
	}
	return s, true
}

const surveyColumns = "id, title, description, questions, created_by, status, deadline, closed_at, created_at"

func scanSurvey(row rowScanner) (models.Survey, error) {
	var s models.Survey
	var questions string
	var deadline, closedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &questions, &s.CreatedBy, &s.Status, &deadline, &closedAt, &s.CreatedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal([]byte(questions), &s.Questions); err != nil {
		return s, fmt.Errorf("failed to decode questions of survey %s: %w", s.ID, err)
	}
	s.Deadline = timePtr(deadline)
	s.ClosedAt = timePtr(closedAt)
	return s, nil
}
