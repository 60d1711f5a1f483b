// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/huddle/models"
)

func strPtr(s string) *string { return &s }

func TestMatchesQuery(t *testing.T) {
	user := models.User{
		ID:         "u1",
		Name:       "Alice Smith",
		Email:      "alice@example.com",
		Role:       models.RoleHOD,
		Department: strPtr("Engineering"),
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"empty query", "", true},
		{"name case-insensitive", "SMITH", true},
		{"email substring", "@example", true},
		{"role", "hod", true},
		{"optional department", "engin", true},
		{"absent position", "manager", false},
		{"no match", "zebra", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesQuery(user, tt.query, UserFields...))
		})
	}
}

func TestMatchesQueryEmptyAlwaysTrue(t *testing.T) {
	assert.True(t, MatchesQuery(models.User{}, "", UserFields...))
	assert.True(t, MatchesQuery(models.Post{}, ""))
}

func TestMatchesQueryAbsentFieldsNeverMatch(t *testing.T) {
	user := models.User{Name: "Bob"}
	onlyOptional := []Field[models.User]{
		func(u models.User) *string { return u.Department },
		func(u models.User) *string { return u.Position },
	}
	assert.False(t, MatchesQuery(user, "b", onlyOptional...))
}

func TestFilter(t *testing.T) {
	users := []models.User{
		{ID: "1", Name: "Alice", Position: strPtr("Designer")},
		{ID: "2", Name: "Bob", Position: strPtr("Engineer")},
		{ID: "3", Name: "Carol"},
	}

	assert.Len(t, Filter(users, "", UserFields...), 3)

	got := Filter(users, "engineer", UserFields...)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "2", got[0].ID)
	}

	assert.Empty(t, Filter(users, "nobody", UserFields...))
}

func TestPostViewFields(t *testing.T) {
	views := []models.PostView{
		{Post: models.Post{ID: "p1", Content: "Quarterly results"}, Author: &models.User{Name: "Dana"}},
		{Post: models.Post{ID: "p2", Content: "Lunch?"}},
	}

	got := Filter(views, "dana", PostViewFields...)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "p1", got[0].Post.ID)
	}
	assert.Len(t, Filter(views, "lunch", PostViewFields...), 1)
}
