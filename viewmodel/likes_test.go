// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/huddle/models"
)

func testUsers() UserResolver {
	return UsersByID([]models.User{
		{ID: "u1", Name: "Me"},
		{ID: "u2", Name: "Alice"},
		{ID: "u3", Name: "Bob"},
		{ID: "u4", Name: "Carol"},
		{ID: "u5", Name: "Dan"},
	})
}

func TestDescribeLikes(t *testing.T) {
	resolve := testUsers()

	tests := []struct {
		name    string
		likers  []string
		current string
		want    string
	}{
		{"nobody", nil, "u1", ""},
		{"only me", []string{"u1"}, "u1", "You liked this"},
		{"me and one", []string{"u1", "u2"}, "u1", "You and Alice liked this"},
		{"me and two", []string{"u1", "u2", "u3"}, "u1", "You and 2 others liked this"},
		{"me listed last", []string{"u2", "u3", "u4", "u1"}, "u1", "You and 3 others liked this"},
		{"one other", []string{"u2"}, "u1", "Alice liked this"},
		{"two others", []string{"u2", "u3"}, "u1", "Alice and Bob liked this"},
		{"three others", []string{"u2", "u3", "u4"}, "u1", "Alice and 2 others liked this"},
		{"four others", []string{"u3", "u2", "u4", "u5"}, "u1", "Bob and 3 others liked this"},
		{"unresolvable dropped with me", []string{"u1", "ghost", "u2"}, "u1", "You and Alice liked this"},
		{"unresolvable dropped without me", []string{"ghost", "u2", "u3"}, "u1", "Alice and Bob liked this"},
		{"only unresolvable", []string{"ghost"}, "u1", ""},
		{"me unresolvable still you", []string{"nobody-me"}, "nobody-me", "You liked this"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeLikes(tt.current, tt.likers, resolve))
		})
	}
}

func TestDescribeLikesCountOnlyIgnoresOrder(t *testing.T) {
	resolve := testUsers()
	orders := [][]string{
		{"u1", "u2", "u3", "u4"},
		{"u4", "u3", "u1", "u2"},
		{"u3", "u1", "u4", "u2"},
	}

	for _, likers := range orders {
		assert.Equal(t, "You and 3 others liked this", DescribeLikes("u1", likers, resolve))
	}
}

func TestBuildPostView(t *testing.T) {
	resolve := testUsers()
	post := models.Post{
		ID:     "p1",
		UserID: "u2",
		Likes:  models.NewUserSet("u3", "u1"),
	}

	view := BuildPostView("u1", post, resolve)
	assert.Equal(t, 2, view.LikeCount)
	assert.True(t, view.LikedByMe)
	assert.Equal(t, "You and Bob liked this", view.LikedByText)
	require.NotNil(t, view.Author)
	assert.Equal(t, "Alice", view.Author.Name)

	post.UserID = "ghost"
	view = BuildPostView("u4", post, resolve)
	assert.False(t, view.LikedByMe)
	assert.Nil(t, view.Author)
	assert.Equal(t, "Bob and Me liked this", view.LikedByText)
}
