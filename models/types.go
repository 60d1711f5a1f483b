// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// User roles
const (
	RoleAdmin      = "admin"
	RoleManagement = "management"
	RoleHOD        = "hod"
	RoleEmployee   = "employee"
)

// Lifecycle status shared by polls, surveys and feedback forms
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Stored connection status
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
)

// Connection status relative to the current user
const (
	ConnectionStatusNone      = "none"
	ConnectionStatusPending   = "pending"
	ConnectionStatusConnected = "connected"
)

// Notification types
const (
	NotificationConnection = "connection"
	NotificationLike       = "like"
	NotificationComment    = "comment"
	NotificationPoll       = "poll"
	NotificationForm       = "form"
	NotificationSurvey     = "survey"
	NotificationSystem     = "system"
)

// Notification titles
const (
	TitleConnectionRequest  = "Connection Request"
	TitleConnectionAccepted = "Connection Accepted"
	TitleNewLike            = "New Like"
	TitleNewComment         = "New Comment"
	TitleNewPoll            = "New Poll"
	TitleNewForm            = "New Feedback Form"
	TitleNewSurvey          = "New Survey"
)

// Feedback form field types
const (
	FieldText        = "text"
	FieldTextarea    = "textarea"
	FieldEmail       = "email"
	FieldNumber      = "number"
	FieldRating      = "rating"
	FieldSelect      = "select"
	FieldMultiSelect = "multiselect"
	FieldCheckbox    = "checkbox"
	FieldDate        = "date"
)

var validRoles = map[string]bool{
	RoleAdmin:      true,
	RoleManagement: true,
	RoleHOD:        true,
	RoleEmployee:   true,
}

var validFieldTypes = map[string]bool{
	FieldText:        true,
	FieldTextarea:    true,
	FieldEmail:       true,
	FieldNumber:      true,
	FieldRating:      true,
	FieldSelect:      true,
	FieldMultiSelect: true,
	FieldCheckbox:    true,
	FieldDate:        true,
}

// IsValidRole reports whether role is one of the closed set of user roles.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// IsValidFieldType reports whether t is a known form field type.
func IsValidFieldType(t string) bool {
	return validFieldTypes[t]
}

// Domain types

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department *string   `json:"department,omitempty"`
	Position   *string   `json:"position,omitempty"`
	Bio        *string   `json:"bio,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Comments  []Comment `json:"comments"`
	Likes     UserSet   `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// Connection is a request from UserID to ConnectedUserID. Once accepted
// it is treated as undirected.
type Connection struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ConnectedUserID string    `json:"connected_user_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	ConnectionID *string   `json:"connection_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type PollOption struct {
	ID     string  `json:"id"`
	PollID string  `json:"poll_id"`
	Text   string  `json:"text"`
	Votes  int     `json:"votes"`
	Voters UserSet `json:"voters"`
}

type Poll struct {
	ID                      string       `json:"id"`
	Question                string       `json:"question"`
	Description             string       `json:"description,omitempty"`
	CreatedBy               string       `json:"created_by"`
	Options                 []PollOption `json:"options"`
	AllowMultipleVotes      bool         `json:"allow_multiple_votes"`
	ShowResultsBeforeVoting bool         `json:"show_results_before_voting"`
	Status                  string       `json:"status"`
	Deadline                *time.Time   `json:"deadline,omitempty"`
	ClosedAt                *time.Time   `json:"closed_at,omitempty"`
	CreatedAt               time.Time    `json:"created_at"`
}

type Survey struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []string   `json:"questions"`
	CreatedBy   string     `json:"created_by"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SurveyResponse struct {
	ID          string    `json:"id"`
	SurveyID    string    `json:"survey_id"`
	UserID      string    `json:"user_id"`
	Answers     []string  `json:"answers"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type FeedbackFormField struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

type FeedbackForm struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Fields      []FeedbackFormField `json:"fields"`
	CreatedBy   string              `json:"created_by"`
	Status      string              `json:"status"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	ClosedAt    *time.Time          `json:"closed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// FeedbackFormResponse holds one submission. Responses is keyed by field id.
type FeedbackFormResponse struct {
	ID              string         `json:"id"`
	FormID          string         `json:"form_id"`
	Responses       map[string]any `json:"responses"`
	RespondentName  string         `json:"respondent_name,omitempty"`
	RespondentEmail string         `json:"respondent_email,omitempty"`
	SubmittedAt     time.Time      `json:"submitted_at"`
}

type Feedback struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"` // nil when anonymous
	Category  string    `json:"category"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Request types

type CreateUserRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
}

type CreatePostRequest struct {
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}

type ConnectRequest struct {
	UserID string `json:"user_id"`
}

type CreatePollRequest struct {
	Question                string     `json:"question"`
	Description             string     `json:"description"`
	Options                 []string   `json:"options"`
	AllowMultipleVotes      bool       `json:"allow_multiple_votes"`
	ShowResultsBeforeVoting bool       `json:"show_results_before_voting"`
	Deadline                *time.Time `json:"deadline,omitempty"`
}

type VoteRequest struct {
	OptionID string `json:"option_id"`
}

type CreateSurveyRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []string   `json:"questions"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type SubmitSurveyRequest struct {
	Answers []string `json:"answers"`
}

type CreateFormRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Fields      []FeedbackFormField `json:"fields"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
}

type SubmitFormRequest struct {
	Responses map[string]any `json:"responses"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
}

type CreateFeedbackRequest struct {
	Category  string `json:"category"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Rating    *int   `json:"rating,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// Response types

type CreatedResponse struct {
	ID string `json:"id"`
}

type LikeResponse struct {
	PostID    string `json:"post_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

type CountResponse struct {
	Updated int64 `json:"updated"`
}

// View types

// UserView is a roster entry seen by the current user.
type UserView struct {
	User             User    `json:"user"`
	ConnectionStatus string  `json:"connection_status"`
	ConnectionID     *string `json:"connection_id,omitempty"`
}

type PostView struct {
	Post        Post   `json:"post"`
	Author      *User  `json:"author,omitempty"`
	LikeCount   int    `json:"like_count"`
	LikedByMe   bool   `json:"liked_by_me"`
	LikedByText string `json:"liked_by_text"`
}

type NotificationView struct {
	Notification      Notification `json:"notification"`
	Ago               string       `json:"ago"`
	PendingConnection *Connection  `json:"pending_connection,omitempty"`
}

type NotificationsResponse struct {
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int                `json:"unread_count"`
}

// PollOptionView leaves Votes and Percentage nil while results are hidden.
type PollOptionView struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VotedByMe  bool   `json:"voted_by_me"`
	Votes      *int   `json:"votes,omitempty"`
	Percentage *int   `json:"percentage,omitempty"`
}

type PollView struct {
	ID                 string           `json:"id"`
	Question           string           `json:"question"`
	Description        string           `json:"description,omitempty"`
	CreatedBy          string           `json:"created_by"`
	Status             string           `json:"status"`
	AllowMultipleVotes bool             `json:"allow_multiple_votes"`
	Deadline           *time.Time       `json:"deadline,omitempty"`
	HasVoted           bool             `json:"has_voted"`
	ShowResults        bool             `json:"show_results"`
	TotalVotes         *int             `json:"total_votes,omitempty"`
	Options            []PollOptionView `json:"options"`
	CreatedAt          time.Time        `json:"created_at"`
}

type AnswerLine struct {
	FieldID string `json:"field_id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

type FormResponseDetail struct {
	ResponseID      string       `json:"response_id"`
	RespondentName  string       `json:"respondent_name"`
	RespondentEmail string       `json:"respondent_email"`
	SubmittedAt     time.Time    `json:"submitted_at"`
	Answers         []AnswerLine `json:"answers"`
}

// Error responses

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ValidationErrorResponse struct {
	Error         string   `json:"error"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields,omitempty"`
	UnknownFields []string `json:"unknown_fields,omitempty"`
}
