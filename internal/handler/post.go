package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/auth"
	"github.com/SimasDei/dev-bastion/internal/service"
)

// PostHandler exposes the post feed with its likes and comments.
type PostHandler struct {
	posts    *service.PostService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		validate: validator.New(),
		logger:   logger,
	}
}

type postRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleCreate saves a new post for the caller.
//
// HTTP: POST /api/posts (authenticated)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	post, err := h.posts.Create(r.Context(), userID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleList returns the feed, newest first.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	posts, err := h.posts.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// HandleGet returns one post with its likes and comments.
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post, owner only.
//
// HTTP: DELETE /api/posts/{id} (authenticated)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.posts.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLike appends the caller's like; a repeat like returns 409.
//
// HTTP: PUT /api/posts/like/{id} (authenticated)
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	likes, err := h.posts.Like(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

// HandleUnlike removes the caller's like.
//
// HTTP: PUT /api/posts/unlike/{id} (authenticated)
func (h *PostHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	likes, err := h.posts.Unlike(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

// HandleAddComment prepends a comment to a post.
//
// HTTP: POST /api/posts/comment/{id} (authenticated)
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	comments, err := h.posts.AddComment(r.Context(), userID, r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comments)
}

// HandleRemoveComment deletes one comment by its sub-id, author only.
//
// HTTP: DELETE /api/posts/comment/{id}/{commentID} (authenticated)
func (h *PostHandler) HandleRemoveComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	comments, err := h.posts.RemoveComment(r.Context(), userID, r.PathValue("id"), r.PathValue("commentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}
