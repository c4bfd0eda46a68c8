package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/model"
	"github.com/SimasDei/dev-bastion/internal/repository"
)

func createTestPost(t *testing.T, db *DB, userID, text string) *model.Post {
	t.Helper()
	post := &model.Post{UserID: userID, Text: text, Name: "Tester", Avatar: "av"}
	if err := db.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func TestCreatePost(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Ada", "ada@example.com")

	post := createTestPost(t, db, user.ID, "hello")

	if post.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if post.Likes == nil || post.Comments == nil {
		t.Error("Create() should initialize empty like and comment lists")
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Posts.GetByID(context.Background(), "no-such-post")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListPosts_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "Ada", "ada@example.com")

	first := createTestPost(t, db, user.ID, "first")
	second := createTestPost(t, db, user.ID, "second")

	posts, err := db.Posts.List(ctx, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("List() returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Errorf("List() order = [%s %s], want newest first", posts[0].Text, posts[1].Text)
	}
}

func TestAddLike_SecondLikeConflictsAndCountUnchanged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, user.ID, "hello")

	if err := db.Posts.AddLike(ctx, post.ID, user.ID); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}

	err := db.Posts.AddLike(ctx, post.ID, user.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("AddLike(again) error = %v, want ErrConflict", err)
	}

	got, err := db.Posts.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Likes) != 1 {
		t.Errorf("like count = %d after rejected double-like, want 1", len(got.Likes))
	}
}

func TestAddLike_UnknownPost(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "Ada", "ada@example.com")

	err := db.Posts.AddLike(context.Background(), "no-such-post", user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddLike(unknown post) error = %v, want ErrNotFound", err)
	}
}

func TestRemoveLike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, user.ID, "hello")

	if err := db.Posts.AddLike(ctx, post.ID, user.ID); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	if err := db.Posts.RemoveLike(ctx, post.ID, user.ID); err != nil {
		t.Fatalf("RemoveLike() error = %v", err)
	}

	if err := db.Posts.RemoveLike(ctx, post.ID, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveLike(absent) error = %v, want ErrNotFound", err)
	}
}

func TestComments_AddGetRemove(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestUser(t, db, "Ada", "ada@example.com")
	commenter := createTestUser(t, db, "Bob", "bob@example.com")
	post := createTestPost(t, db, author.ID, "hello")

	first := &model.Comment{UserID: commenter.ID, Text: "nice", Name: "Bob", Avatar: "av"}
	second := &model.Comment{UserID: author.ID, Text: "thanks", Name: "Ada", Avatar: "av"}
	for _, c := range []*model.Comment{first, second} {
		if err := db.Posts.AddComment(ctx, post.ID, c); err != nil {
			t.Fatalf("AddComment(%q) error = %v", c.Text, err)
		}
	}

	got, err := db.Posts.GetComment(ctx, post.ID, first.ID)
	if err != nil {
		t.Fatalf("GetComment() error = %v", err)
	}
	if got.UserID != commenter.ID || got.Text != "nice" {
		t.Errorf("GetComment() = %+v", got)
	}

	if err := db.Posts.RemoveComment(ctx, post.ID, first.ID); err != nil {
		t.Fatalf("RemoveComment() error = %v", err)
	}

	// The other comment is untouched.
	refreshed, err := db.Posts.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(refreshed.Comments) != 1 || refreshed.Comments[0].ID != second.ID {
		t.Errorf("RemoveComment() was not keyed by id: remaining = %+v", refreshed.Comments)
	}

	if _, err := db.Posts.GetComment(ctx, post.ID, first.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetComment(removed) error = %v, want ErrNotFound", err)
	}
}

func TestDeletePost_RemovesLikesAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "Ada", "ada@example.com")
	post := createTestPost(t, db, user.ID, "hello")

	if err := db.Posts.AddLike(ctx, post.ID, user.ID); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	if err := db.Posts.AddComment(ctx, post.ID, &model.Comment{UserID: user.ID, Text: "hi"}); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if err := db.Posts.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Posts.GetByID(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrNotFound", err)
	}
	if err := db.Posts.Delete(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}
