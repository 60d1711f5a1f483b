// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSetDropsDuplicates(t *testing.T) {
	s := NewUserSet("u1", "u2", "u1", "u3", "u2")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"u1", "u2", "u3"}, s.IDs())
}

func TestUserSetToggle(t *testing.T) {
	var s UserSet

	assert.True(t, s.Toggle("u1"), "first toggle adds")
	assert.True(t, s.Has("u1"))
	assert.False(t, s.Toggle("u1"), "second toggle removes")
	assert.False(t, s.Has("u1"))
	assert.Equal(t, 0, s.Len())
}

func TestUserSetRemoveKeepsOrder(t *testing.T) {
	s := NewUserSet("a", "b", "c", "d")

	require.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "c", "d"}, s.IDs())

	// Index must still point at the shifted members
	require.True(t, s.Remove("d"))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.True(t, s.Has("c"))
}

func TestUserSetCopiesAreIndependent(t *testing.T) {
	t.Run("remove", func(t *testing.T) {
		orig := NewUserSet("a", "b", "c")
		snapshot := orig

		orig.Remove("a")

		assert.Equal(t, []string{"a", "b", "c"}, snapshot.IDs())
		assert.Equal(t, 3, snapshot.Len())
		assert.True(t, snapshot.Has("a"))
		assert.Equal(t, []string{"b", "c"}, orig.IDs())
	})

	t.Run("add", func(t *testing.T) {
		orig := NewUserSet("a")
		snapshot := orig

		orig.Add("b")

		assert.False(t, snapshot.Has("b"))
		assert.Equal(t, 1, snapshot.Len())
	})

	t.Run("option copied before a toggle", func(t *testing.T) {
		opt := PollOption{ID: "o1", Voters: NewUserSet("u1", "u2")}
		opt.Votes = opt.Voters.Len()
		before := opt

		opt.Voters.Toggle("u1")

		assert.Equal(t, []string{"u1", "u2"}, before.Voters.IDs())
		assert.Equal(t, before.Votes, before.Voters.Len())
		assert.Equal(t, []string{"u2"}, opt.Voters.IDs())
	})
}

func TestUserSetJSON(t *testing.T) {
	var empty UserSet
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	var s UserSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &s))
	assert.Equal(t, []string{"x", "y"}, s.IDs())

	data, err = json.Marshal(Post{ID: "p1", Likes: s})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"likes":["x","y"]`)
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManagement, RoleHOD, RoleEmployee} {
		assert.True(t, IsValidRole(role), role)
	}
	assert.False(t, IsValidRole("contractor"))
	assert.False(t, IsValidRole(""))
}
