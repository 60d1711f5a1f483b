// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"strings"

	"github.com/danielhkuo/huddle/models"
)

// Field extracts one searchable text field from an entity. A nil result
// means the field is absent and never matches.
type Field[T any] func(T) *string

// Text adapts a plain string accessor to a Field.
func Text[T any](get func(T) string) Field[T] {
	return func(v T) *string {
		s := get(v)
		return &s
	}
}

// MatchesQuery reports whether any field of entity contains query,
// ignoring case. The empty query matches everything.
func MatchesQuery[T any](entity T, query string, fields ...Field[T]) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range fields {
		v := field(entity)
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*v), q) {
			return true
		}
	}
	return false
}

// Filter keeps the items matching query. With no query the input is
// returned as is.
func Filter[T any](items []T, query string, fields ...Field[T]) []T {
	if query == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if MatchesQuery(item, query, fields...) {
			out = append(out, item)
		}
	}
	return out
}

// UserFields are searched by the team roster.
var UserFields = []Field[models.User]{
	Text(func(u models.User) string { return u.Name }),
	Text(func(u models.User) string { return u.Email }),
	Text(func(u models.User) string { return u.Role }),
	func(u models.User) *string { return u.Department },
	func(u models.User) *string { return u.Position },
}

// PostFields are searched by the feed.
var PostFields = []Field[models.Post]{
	Text(func(p models.Post) string { return p.Content }),
}

// FormFields are searched by the feedback form list.
var FormFields = []Field[models.FeedbackForm]{
	Text(func(f models.FeedbackForm) string { return f.Title }),
	Text(func(f models.FeedbackForm) string { return f.Description }),
}

// PostViewFields search post content and the author's name.
var PostViewFields = []Field[models.PostView]{
	Text(func(v models.PostView) string { return v.Post.Content }),
	func(v models.PostView) *string {
		if v.Author == nil {
			return nil
		}
		return &v.Author.Name
	},
}
