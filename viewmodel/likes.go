// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package viewmodel

import (
	"fmt"

	"github.com/danielhkuo/huddle/models"
)

// UserResolver looks a user up by id.
type UserResolver func(id string) (models.User, bool)

// UsersByID returns a resolver over a snapshot of users.
func UsersByID(users []models.User) UserResolver {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return func(id string) (models.User, bool) {
		u, ok := byID[id]
		return u, ok
	}
}

// DescribeLikes renders the "liked by" sentence for a post.
//
// Likers other than the current user that do not resolve are dropped
// before counting, so they change the number shown.
func DescribeLikes(currentUserID string, likerIDs []string, resolve UserResolver) string {
	if len(likerIDs) == 0 {
		return ""
	}

	likedByMe := false
	var others []models.User
	for _, id := range likerIDs {
		if id == currentUserID {
			likedByMe = true
			continue
		}
		if u, ok := resolve(id); ok {
			others = append(others, u)
		}
	}

	if likedByMe {
		switch len(others) {
		case 0:
			return "You liked this"
		case 1:
			return fmt.Sprintf("You and %s liked this", others[0].Name)
		default:
			return fmt.Sprintf("You and %d others liked this", len(others))
		}
	}

	switch len(others) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%s liked this", others[0].Name)
	case 2:
		return fmt.Sprintf("%s and %s liked this", others[0].Name, others[1].Name)
	default:
		return fmt.Sprintf("%s and %d others liked this", others[0].Name, len(others)-1)
	}
}

// BuildPostView decorates a post for currentUserID.
func BuildPostView(currentUserID string, post models.Post, resolve UserResolver) models.PostView {
	view := models.PostView{
		Post:        post,
		LikeCount:   post.Likes.Len(),
		LikedByMe:   post.Likes.Has(currentUserID),
		LikedByText: DescribeLikes(currentUserID, post.Likes.IDs(), resolve),
	}
	if author, ok := resolve(post.UserID); ok {
		view.Author = &author
	}
	return view
}
