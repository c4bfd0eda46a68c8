// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the concrete implementation;
// service tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/SimasDei/dev-bastion/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository stores accounts. Create must enforce case-insensitive
// email uniqueness at the store level and return apperror.ErrConflict on
// violation. There is no separate exists-check, so concurrent duplicate
// registrations cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHub inserts or updates an account keyed by its GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	// Delete hard-deletes the account. The store cascades to the profile,
	// the account's posts, and its comments and likes on other posts.
	Delete(ctx context.Context, id string) error
}

// ProfileRepository stores the 1:1 user profile and its owned history lists.
// All list mutations are keyed by stable sub-id, never by position.
type ProfileRepository interface {
	// Upsert creates the profile if absent, otherwise merges the provided
	// fields into the stored row. The create/update decision and the write
	// happen atomically so two concurrent upserts cannot produce two
	// profiles for one user.
	Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	List(ctx context.Context, opts ListOptions) ([]model.Profile, error)

	AddExperience(ctx context.Context, userID string, exp *model.Experience) error
	// GetExperienceOwner resolves an experience entry to the user that owns
	// it; apperror.ErrNotFound if no such entry. The service compares the
	// owner against the caller before removal.
	GetExperienceOwner(ctx context.Context, experienceID string) (string, error)
	RemoveExperience(ctx context.Context, experienceID string) error
	AddEducation(ctx context.Context, userID string, edu *model.Education) error
	GetEducationOwner(ctx context.Context, educationID string) (string, error)
	RemoveEducation(ctx context.Context, educationID string) error
}

// PostRepository stores posts with their embedded likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Delete(ctx context.Context, id string) error

	// AddLike appends a like; a second like by the same user returns
	// apperror.ErrConflict and leaves the set unchanged.
	AddLike(ctx context.Context, postID, userID string) error
	// RemoveLike removes the caller's like; apperror.ErrNotFound if absent.
	RemoveLike(ctx context.Context, postID, userID string) error

	AddComment(ctx context.Context, postID string, comment *model.Comment) error
	// GetComment resolves a comment by its stable sub-id within a post.
	GetComment(ctx context.Context, postID, commentID string) (*model.Comment, error)
	RemoveComment(ctx context.Context, postID, commentID string) error
}
