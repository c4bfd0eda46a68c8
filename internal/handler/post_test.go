package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createPost(t *testing.T, router http.Handler, token, text string) string {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/posts", token, `{"text": "`+text+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post returned %d: %s", rec.Code, rec.Body.String())
	}
	var post struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("failed to decode post: %v", err)
	}
	return post.ID
}

func TestHandleCreatePost(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Ada", "ada@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/posts", token, `{"text": "hello"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hello"`)
	// The author snapshot rides on the post.
	assert.Contains(t, rec.Body.String(), `"Ada"`)
}

func TestHandleCreatePost_Unauthenticated(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", "", `{"text": "hello"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleLikePost(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Ada", "ada@example.com")
	postID := createPost(t, router, token, "hello")

	rec := doRequest(t, router, http.MethodPut, "/api/posts/like/"+postID, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var likes []struct {
		UserID string `json:"userId"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &likes))
	assert.Len(t, likes, 1)

	// Liking twice is a conflict.
	rec = doRequest(t, router, http.MethodPut, "/api/posts/like/"+postID, token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleDeletePost_OnlyOwner(t *testing.T) {
	router := newTestRouter(t)
	owner := registerUser(t, router, "Ada", "ada@example.com")
	intruder := registerUser(t, router, "Bob", "bob@example.com")
	postID := createPost(t, router, owner, "hello")

	rec := doRequest(t, router, http.MethodDelete, "/api/posts/"+postID, intruder, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/posts/"+postID, owner, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/posts/"+postID, owner, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListPosts_Public(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Ada", "ada@example.com")
	createPost(t, router, token, "hello")

	// The feed is readable without a token.
	rec := doRequest(t, router, http.MethodGet, "/api/posts", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hello"`)
}
