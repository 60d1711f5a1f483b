// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/auth"
	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/models"
	"github.com/danielhkuo/huddle/viewmodel"
)

type FeedHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewFeedHandler(db *sql.DB, cfg cliparse.Config) *FeedHandler {
	return &FeedHandler{db: db, cfg: cfg}
}

// CreatePost handles POST /posts
func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if isBlank(req.Content) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content is required")
		return
	}

	postID := auth.GenerateID()
	_, err := h.db.Exec(`
		INSERT INTO post (id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`, postID, callerID, strings.TrimSpace(req.Content), now())
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert post")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create post")
		return
	}

	logger.Log.WithFields(logrus.Fields{"post_id": postID, "user_id": callerID}).Info("post created")

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{ID: postID})
}

// GetFeed handles GET /feed?q=
// Posts are returned newest first with like summaries for the caller.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}

	posts, err := loadPosts(h.db)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load feed")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	users, err := loadUsers(h.db)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load users")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resolve := viewmodel.UsersByID(users)
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, viewmodel.BuildPostView(callerID, p, resolve))
	}
	views = viewmodel.Filter(views, r.URL.Query().Get("q"), viewmodel.PostViewFields...)

	middleware.JSONResponse(w, http.StatusOK, views)
}

// ToggleLike handles POST /posts/{id}/like
func (h *FeedHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}
	postID := r.PathValue("id")

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if err := lockRow(tx, h.cfg.DatabaseType, "post", postID); err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		logger.Log.WithError(err).Error("failed to lock post")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var authorID string
	err = tx.QueryRow("SELECT user_id FROM post WHERE id = $1", postID).Scan(&authorID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to query post")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	res, err := tx.Exec("DELETE FROM post_like WHERE post_id = $1 AND user_id = $2", postID, callerID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to remove like")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	removed, _ := res.RowsAffected()
	liked := removed == 0

	if liked {
		err = insertLike(tx, postID, callerID)
		if err != nil && err != errConflict {
			logger.Log.WithError(err).Error("failed to insert like")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		// errConflict means a concurrent request already liked the post
		// and notified the author
		if err == nil && authorID != callerID {
			if err := h.notifyAuthor(tx, authorID, callerID, models.NotificationLike, models.TitleNewLike, "liked your post"); err != nil {
				logger.Log.WithError(err).Error("failed to notify post author")
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			}
		}
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM post_like WHERE post_id = $1", postID).Scan(&count); err != nil {
		logger.Log.WithError(err).Error("failed to count likes")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit like")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LikeResponse{
		PostID:    postID,
		Liked:     liked,
		LikeCount: count,
	})
}

// AddComment handles POST /posts/{id}/comments
func (h *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r, h.db)
	if !ok {
		return
	}
	postID := r.PathValue("id")

	var req models.CreateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if isBlank(req.Text) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		logger.Log.WithError(err).Error("failed to begin transaction")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if err := lockRow(tx, h.cfg.DatabaseType, "post", postID); err == errNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Post not found")
		return
	} else if err != nil {
		logger.Log.WithError(err).Error("failed to lock post")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var authorID string
	err = tx.QueryRow("SELECT user_id FROM post WHERE id = $1", postID).Scan(&authorID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to query post")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	comment := models.Comment{
		ID:        auth.GenerateID(),
		PostID:    postID,
		UserID:    callerID,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: now(),
	}
	_, err = tx.Exec(`
		INSERT INTO post_comment (id, post_id, user_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.PostID, comment.UserID, comment.Text, comment.CreatedAt)
	if err != nil {
		logger.Log.WithError(err).Error("failed to insert comment")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add comment")
		return
	}

	if authorID != callerID {
		if err := h.notifyAuthor(tx, authorID, callerID, models.NotificationComment, models.TitleNewComment, "commented on your post"); err != nil {
			logger.Log.WithError(err).Error("failed to notify post author")
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Log.WithError(err).Error("failed to commit comment")
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	logger.Log.WithFields(logrus.Fields{"post_id": postID, "comment_id": comment.ID}).Info("comment added")

	middleware.JSONResponse(w, http.StatusCreated, comment)
}

func (h *FeedHandler) notifyAuthor(tx *sql.Tx, authorID, actorID, kind, title, action string) error {
	actor, err := loadUser(tx, actorID)
	if err != nil {
		return err
	}
	return notify(tx, authorID, kind, title, actor.Name+" "+action, nil)
}

// insertLike adds userID to the likes of postID, or returns errConflict
// when it is already there
func insertLike(db querier, postID, userID string) error {
	return insertIgnoringConflict(db, `
		INSERT INTO post_like (post_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`, postID, userID, now())
}

// loadPosts returns every post, newest first, with its comments in
// order and its likes in the order they were given
func loadPosts(db querier) ([]models.Post, error) {
	rows, err := db.Query("SELECT id, user_id, content, created_at FROM post")
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	index := map[string]int{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		p.Comments = []models.Comment{}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	type like struct {
		postID, userID string
		at             time.Time
	}
	rows, err = db.Query("SELECT post_id, user_id, created_at FROM post_like")
	if err != nil {
		return nil, err
	}
	var likes []like
	for rows.Next() {
		var l like
		if err := rows.Scan(&l.postID, &l.userID, &l.at); err != nil {
			rows.Close()
			return nil, err
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	sort.SliceStable(likes, func(i, j int) bool { return likes[i].at.Before(likes[j].at) })
	for _, l := range likes {
		if i, ok := index[l.postID]; ok {
			posts[i].Likes.Add(l.userID)
		}
	}

	rows, err = db.Query("SELECT id, post_id, user_id, text, created_at FROM post_comment")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		comments := posts[i].Comments
		sort.SliceStable(comments, func(a, b int) bool { return comments[a].CreatedAt.Before(comments[b].CreatedAt) })
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })

	return posts, nil
}
