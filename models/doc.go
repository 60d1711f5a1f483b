// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, response, and view types for the API.

# Domain Types

  - User: roster entry with a role (admin, management, hod, employee)
  - Post, Comment: feed entries; likes are a UserSet
  - Connection: request from UserID to ConnectedUserID (pending, accepted)
  - Notification: addressed to one user, read only moves false → true
  - Poll, PollOption: options carry their voters as a UserSet
  - Survey, SurveyResponse: free-text answers per question
  - FeedbackForm, FeedbackFormField, FeedbackFormResponse: structured forms
  - Feedback: free-form feedback, optionally anonymous

# View Types

Derived, ready-to-render shapes built by the viewmodel package:

  - UserView: user plus connection status relative to the caller
  - PostView: post plus like count and "liked by" text
  - NotificationView: notification plus relative time and matched connection
  - PollView: poll with results gated per viewer
  - FormResponseDetail: one submission rendered field by field

# UserSet

UserSet is an insertion-ordered set of user ids with toggle semantics:

	var likes models.UserSet
	likes.Toggle("u1") // true, now liked
	likes.Toggle("u1") // false, like removed

It marshals to and from a JSON array.

# Constants

Lifecycle status for polls, surveys and forms:

	StatusActive = "active"
	StatusClosed = "closed"

Stored connection status:

	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
*/
package models
