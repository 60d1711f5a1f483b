// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/handlers"
	"github.com/danielhkuo/huddle/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db)
	feedHandler := handlers.NewFeedHandler(db, cfg)
	connectionHandler := handlers.NewConnectionHandler(db, cfg)
	notificationHandler := handlers.NewNotificationHandler(db)
	pollHandler := handlers.NewPollHandler(db, cfg)
	formHandler := handlers.NewFormHandler(db)
	surveyHandler := handlers.NewSurveyHandler(db)
	feedbackHandler := handlers.NewFeedbackHandler(db)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Roster
	mux.HandleFunc("POST /users", middleware.WithLogging(userHandler.CreateUser))
	mux.HandleFunc("GET /users", middleware.WithLogging(userHandler.ListUsers))
	mux.HandleFunc("GET /users/{id}", middleware.WithLogging(userHandler.GetUser))

	// Feed
	mux.HandleFunc("POST /posts", middleware.WithLogging(feedHandler.CreatePost))
	mux.HandleFunc("GET /feed", middleware.WithLogging(feedHandler.GetFeed))
	mux.HandleFunc("POST /posts/{id}/like", middleware.WithLogging(feedHandler.ToggleLike))
	mux.HandleFunc("POST /posts/{id}/comments", middleware.WithLogging(feedHandler.AddComment))

	// Connections
	mux.HandleFunc("POST /connections", middleware.WithLogging(connectionHandler.Connect))
	mux.HandleFunc("GET /connections", middleware.WithLogging(connectionHandler.ListConnections))
	mux.HandleFunc("POST /connections/{id}/accept", middleware.WithLogging(connectionHandler.AcceptConnection))
	mux.HandleFunc("DELETE /connections/{id}", middleware.WithLogging(connectionHandler.Disconnect))

	// Notification center
	mux.HandleFunc("GET /notifications", middleware.WithLogging(notificationHandler.ListNotifications))
	mux.HandleFunc("POST /notifications/read-all", middleware.WithLogging(notificationHandler.MarkAllRead))
	mux.HandleFunc("POST /notifications/{id}/read", middleware.WithLogging(notificationHandler.MarkRead))

	// Polls
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(pollHandler.Vote))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))

	// Feedback forms
	mux.HandleFunc("POST /forms", middleware.WithLogging(formHandler.CreateForm))
	mux.HandleFunc("GET /forms", middleware.WithLogging(formHandler.ListForms))
	mux.HandleFunc("GET /forms/{id}", middleware.WithLogging(formHandler.GetForm))
	mux.HandleFunc("POST /forms/{id}/close", middleware.WithLogging(formHandler.CloseForm))
	mux.HandleFunc("POST /forms/{id}/responses", middleware.WithLogging(formHandler.SubmitResponse))
	mux.HandleFunc("GET /forms/{id}/responses", middleware.WithLogging(formHandler.ListResponses))
	mux.HandleFunc("GET /forms/{id}/responses/{responseId}", middleware.WithLogging(formHandler.GetResponseDetail))
	mux.HandleFunc("GET /forms/{id}/export", middleware.WithLogging(formHandler.ExportResponses))

	// Surveys
	mux.HandleFunc("POST /surveys", middleware.WithLogging(surveyHandler.CreateSurvey))
	mux.HandleFunc("GET /surveys", middleware.WithLogging(surveyHandler.ListSurveys))
	mux.HandleFunc("POST /surveys/{id}/responses", middleware.WithLogging(surveyHandler.Respond))
	mux.HandleFunc("GET /surveys/{id}/responses", middleware.WithLogging(surveyHandler.ListResponses))
	mux.HandleFunc("POST /surveys/{id}/close", middleware.WithLogging(surveyHandler.CloseSurvey))

	// Free-form feedback
	mux.HandleFunc("POST /feedback", middleware.WithLogging(feedbackHandler.CreateFeedback))
	mux.HandleFunc("GET /feedback", middleware.WithLogging(feedbackHandler.ListFeedback))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("huddle API v1"))
	})

	return mux
}
