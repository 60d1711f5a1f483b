// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Huddle API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Every endpoint except health, root and POST /users requires the X-User-ID
header naming a user on the roster.

Roster:

	POST /users      - Add a user
	GET  /users      - List users (?q=, ?role=) with connection status
	GET  /users/{id} - One user with connection status

Feed:

	POST /posts                - Create post
	GET  /feed                 - Posts with like summaries (?q=)
	POST /posts/{id}/like      - Toggle like
	POST /posts/{id}/comments  - Comment

Connections:

	POST   /connections             - Request a connection
	GET    /connections             - Caller's connections (?status=)
	POST   /connections/{id}/accept - Accept (addressee only)
	DELETE /connections/{id}        - Remove, withdraw or decline

Notifications:

	GET  /notifications           - Notification center with unread count
	POST /notifications/{id}/read - Mark one read
	POST /notifications/read-all  - Mark all read

Polls:

	POST /polls            - Create poll
	GET  /polls            - List polls (?status=)
	GET  /polls/{id}       - Poll with gated results
	POST /polls/{id}/votes - Vote
	POST /polls/{id}/close - Close (creator only)

Feedback forms:

	POST /forms                               - Create form
	GET  /forms                               - List forms (?q=, ?status=)
	GET  /forms/{id}                          - Form definition
	POST /forms/{id}/responses                - Submit
	GET  /forms/{id}/responses                - Submissions
	GET  /forms/{id}/responses/{responseId}   - Submission detail
	GET  /forms/{id}/export                   - CSV export
	POST /forms/{id}/close                    - Close

Surveys and feedback:

	POST /surveys                 - Create survey
	GET  /surveys                 - List surveys
	POST /surveys/{id}/responses  - Answer
	GET  /surveys/{id}/responses  - Answers
	POST /surveys/{id}/close      - Close
	POST /feedback                - Submit feedback
	GET  /feedback                - List feedback
*/
package router
