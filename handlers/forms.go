// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
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

type FormHandler struct {
	db *sql.DB
}

func NewFormHandler(db *sql.DB) *FormHandler {
	return &FormHandler{db: db}
}

// CreateForm handles POST /forms
// Fields without an id get one generated.
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreateFormRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if isBlank(req.Title) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Fields) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one field is required")
		return
	}

	seen := map[string]bool{}
	for i := range req.Fields {
		f := &req.Fields[i]
		if f.ID == "" {
			f.ID = auth.GenerateID()
		}
		if seen[f.ID] {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("duplicate field id %q", f.ID))
			return
		}
		seen[f.ID] = true

		if isBlank(f.Label) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "every field needs a label")
			return
		}
		if !models.IsValidFieldType(f.Type) {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown field type %q", f.Type))
			return
		}
		if (f.Type == models.FieldSelect || f.Type == models.FieldMultiSelect) && len(f.Options) == 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("field %q needs options", f.Label))
			return
		}
	}

	created := now()
	if req.Deadline != nil && !req.Deadline.After(created) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "deadline must be in the future")
		return
	}

	fieldsJSON, err := json.Marshal(req.Fields)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to encode fields")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	formID := auth.GenerateID()
	_, err = tx.Exec(`
		INSERT INTO feedback_form (id, title, description, fields, created_by, status, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, formID, strings.TrimSpace(req.Title), req.Description, string(fieldsJSON), callerID,
		models.StatusActive, nullableTime(req.Deadline), created)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert form")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create form")
		return
	}

	if err := announce(tx, callerID, models.NotificationForm, models.TitleNewForm, strings.TrimSpace(req.Title)); err != nil {
		logger.Log.WithError(err).Error("failed to announce form")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit form")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{"form_id": formID, "fields": len(req.Fields)}).Info("form created")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: formID})
}

// ListForms handles GET /forms?q=&status=
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r, h.db); !ok {
		return
	}

	forms, err := loadForms(h.db, r.URL.Query().Get("status"))
	if err != nil {
		logger.Log.WithError(err).Error("failed to load forms")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, viewmodel.Filter(forms, r.URL.Query().Get("q"), viewmodel.FormFields...))
}

// GetForm handles GET /forms/{id}
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r, h.db); !ok {
		return
	}

	form, ok := h.form(w, r.PathValue("id"))
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, form)
}

// SubmitResponse handles POST /forms/{id}/responses
func (h *FormHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r, h.db); !ok {
		return
	}

	var req models.SubmitFormRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	form, ok := h.form(w, r.PathValue("id"))
	if !ok {
		return
	}

	submitted := now()
	if !viewmodel.AcceptsResponses(form.Status, form.Deadline, submitted) {
		middleware.ErrorResponse(w, http.StatusConflict, "Form is not accepting responses")
		return
	}

	if missing := viewmodel.FindMissingRequired(form, req.Responses); len(missing) > 0 {
		middleware.JSONResponse(w, http.StatusBadRequest, models.ValidationErrorResponse{
			Error:         http.StatusText(http.StatusBadRequest),
			Message:       "Required fields are missing",
			MissingFields: missing,
		})
		return
	}
	if unknown := viewmodel.UnknownFields(form, req.Responses); len(unknown) > 0 {
		middleware.JSONResponse(w, http.StatusBadRequest, models.ValidationErrorResponse{
			Error:         http.StatusText(http.StatusBadRequest),
			Message:       "Responses reference fields not on this form",
			UnknownFields: unknown,
		})
		return
	}

	if req.Responses == nil {
		req.Responses = map[string]any{}
	}
	responsesJSON, err := json.Marshal(req.Responses)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Responses must be JSON values")
		return
	}

	responseID := auth.GenerateID()
	_, err = h.db.Exec(`
		INSERT INTO feedback_form_response (id, form_id, responses, respondent_name, respondent_email, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, responseID, form.ID, string(responsesJSON), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), submitted)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert form response")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit response")
		return
	}

	logger.Log.WithFields(logrus.Fields{"form_id": form.ID, "response_id": responseID}).Info("form response submitted")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: responseID})
}

// ListResponses handles GET /forms/{id}/responses
func (h *FormHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}

	responses, err := loadFormResponses(h.db, form.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load form responses")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, responses)
}

// GetResponseDetail handles GET /forms/{id}/responses/{responseId}
func (h *FormHandler) GetResponseDetail(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}

	responses, err := loadFormResponses(h.db, form.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load form responses")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	responseID := r.PathValue("responseId")
	for _, resp := range responses {
		if resp.ID == responseID {
			middleware.JSONResponse(w, http.StatusOK, viewmodel.BuildResponseDetail(form, resp))
			return
		}
	}

	middleware.ErrorResponse(w, http.StatusNotFound, "Response not found")
}

// ExportResponses handles GET /forms/{id}/export
// Writes every response as CSV, one column per form field.
func (h *FormHandler) ExportResponses(w http.ResponseWriter, r *http.Request) {
	form, ok := h.ownedForm(w, r)
	if !ok {
		return
	}

	responses, err := loadFormResponses(h.db, form.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load form responses")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", form.ID+"-responses.csv"))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(viewmodel.ExportHeader(form)); err != nil {
		logger.Log.WithError(err).Error("failed to write csv header")
		return
	}
	for _, resp := range responses {
		if err := cw.Write(viewmodel.ExportRecord(form, resp)); err != nil {
			logger.Log.WithError(err).Error("failed to write csv record")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Log.WithError(err).Error("failed to flush csv")
	}
}

// CloseForm handles POST /forms/{id}/close
func (h *FormHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}
	formID := r.PathValue("id")

	if code, msg := closeItem(h.db, "feedback_form", formID, callerID); code != http.StatusOK {
		middleware.ErrorResponse(w, code, msg)
		return
	}

	form, ok := h.form(w, formID)
	if !ok {
		return
	}

	logger.Log.WithField("form_id", formID).Info("form closed")

	middleware.JSONResponse(w, http.StatusOK, form)
}

// form loads a form or writes the error response
func (h *FormHandler) form(w http.ResponseWriter, id string) (models.FeedbackForm, bool) {
	form, err := loadForm(h.db, id)
	if err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Form not found")
		return form, false
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to load form")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return form, false
	}
	return form, true
}

// ownedForm loads the form in the path for callers allowed to read its
// submissions: the creator and admins.
func (h *FormHandler) ownedForm(w http.ResponseWriter, r *http.Request) (models.FeedbackForm, bool) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return models.FeedbackForm{}, false
	}

	form, ok := h.form(w, r.PathValue("id"))
	if !ok {
		return form, false
	}
	if form.CreatedBy == callerID {
		return form, true
	}

	caller, err := loadUser(h.db, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load caller")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return form, false
	}
	if caller.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only the form creator can view submissions")
		return form, false
	}
	return form, true
}

const formColumns = "id, title, description, fields, created_by, status, deadline, closed_at, created_at"

func scanForm(row rowScanner) (models.FeedbackForm, error) {
	var f models.FeedbackForm
	var fields string
	var deadline, closedAt sql.NullTime
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &fields, &f.CreatedBy, &f.Status, &deadline, &closedAt, &f.CreatedAt); err != nil {
		return f, err
	}
	if err := json.Unmarshal([]byte(fields), &f.Fields); err != nil {
		return f, fmt.Errorf("failed to decode fields of form %s: %w", f.ID, err)
	}
	f.Deadline = timePtr(deadline)
	f.ClosedAt = timePtr(closedAt)
	return f, nil
}

func loadForm(db querier, id string) (models.FeedbackForm, error) {
	f, err := scanForm(db.QueryRow("SELECT "+formColumns+" FROM feedback_form WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return f, errNotFound
	}
	return f, err
}

// loadForms returns forms newest first, optionally filtered by status
func loadForms(db querier, status string) ([]models.FeedbackForm, error) {
	rows, err := db.Query("SELECT " + formColumns + " FROM feedback_form")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []models.FeedbackForm{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		if status == "" || f.Status == status {
			forms = append(forms, f)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(forms, func(i, j int) bool { return forms[i].CreatedAt.After(forms[j].CreatedAt) })
	return forms, nil
}

// loadFormResponses returns the submissions of a form in submission order
func loadFormResponses(db querier, formID string) ([]models.FeedbackFormResponse, error) {
	rows, err := db.Query(`
		SELECT id, form_id, responses, respondent_name, respondent_email, submitted_at
		FROM feedback_form_response WHERE form_id = $1
	`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []models.FeedbackFormResponse{}
	for rows.Next() {
		var resp models.FeedbackFormResponse
		var body string
		if err := rows.Scan(&resp.ID, &resp.FormID, &body, &resp.RespondentName, &resp.RespondentEmail, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(body), &resp.Responses); err != nil {
			return nil, fmt.Errorf("failed to decode response %s: %w", resp.ID, err)
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(responses, func(i, j int) bool { return responses[i].SubmittedAt.Before(responses[j].SubmittedAt) })
	return responses, nil
}
