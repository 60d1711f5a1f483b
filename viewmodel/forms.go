// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/huddle/models"
)

// ExportStyle controls how response values are flattened to text.
type ExportStyle struct {
	ListSeparator string
	Missing       string
}

var (
	// CSVStyle is used for spreadsheet export.
	CSVStyle = ExportStyle{ListSeparator: ", ", Missing: ""}
	// DetailStyle is used for the single-response detail panel.
	DetailStyle = ExportStyle{ListSeparator: "; ", Missing: "—"}
)

// IsEmptyValue reports whether a response value counts as not answered:
// nil, the empty string, or an empty list. Zero numbers and false are
// answers.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}

// FindMissingRequired returns the ids of required fields without an
// answer, in form order.
func FindMissingRequired(form models.FeedbackForm, responses map[string]any) []string {
	var missing []string
	for _, f := range form.Fields {
		if !f.Required {
			continue
		}
		if IsEmptyValue(responses[f.ID]) {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

// UnknownFields returns response keys the form does not define, sorted.
func UnknownFields(form models.FeedbackForm, responses map[string]any) []string {
	known := make(map[string]bool, len(form.Fields))
	for _, f := range form.Fields {
		known[f.ID] = true
	}
	var unknown []string
	for key := range responses {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// FormatValue flattens one response value.
func FormatValue(v any, style ExportStyle) string {
	if IsEmptyValue(v) {
		return style.Missing
	}
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatScalar(item)
		}
		return strings.Join(parts, style.ListSeparator)
	case []string:
		return strings.Join(val, style.ListSeparator)
	default:
		return formatScalar(val)
	}
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// ToTabularRow flattens a response to one cell per form field, in form
// order.
func ToTabularRow(form models.FeedbackForm, response models.FeedbackFormResponse, style ExportStyle) []string {
	row := make([]string, len(form.Fields))
	for i, f := range form.Fields {
		row[i] = FormatValue(response.Responses[f.ID], style)
	}
	return row
}

// ExportHeader is the CSV header matching ExportRecord.
func ExportHeader(form models.FeedbackForm) []string {
	header := []string{"Submitted At", "Name", "Email"}
	for _, f := range form.Fields {
		header = append(header, f.Label)
	}
	return header
}

// ExportRecord is one CSV line: submission metadata followed by the
// field values in CSVStyle.
func ExportRecord(form models.FeedbackForm, response models.FeedbackFormResponse) []string {
	record := []string{
		response.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
		response.RespondentName,
		response.RespondentEmail,
	}
	return append(record, ToTabularRow(form, response, CSVStyle)...)
}

// BuildResponseDetail renders one response field by field in DetailStyle.
func BuildResponseDetail(form models.FeedbackForm, response models.FeedbackFormResponse) models.FormResponseDetail {
	values := ToTabularRow(form, response, DetailStyle)
	answers := make([]models.AnswerLine, len(form.Fields))
	for i, f := range form.Fields {
		answers[i] = models.AnswerLine{FieldID: f.ID, Label: f.Label, Value: values[i]}
	}
	return models.FormResponseDetail{
		ResponseID:      response.ID,
		RespondentName:  response.RespondentName,
		RespondentEmail: response.RespondentEmail,
		SubmittedAt:     response.SubmittedAt,
		Answers:         answers,
	}
}
