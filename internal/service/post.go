package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/model"
	"github.com/SimasDei/dev-bastion/internal/repository"
)

const MaxPostTextLength = 5000

// PostService owns the post feed and its embedded likes and comments.
// Every mutation first resolves the target, then goes through the
// ownership gate.
type PostService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		logger: logger,
	}
}

// Create saves a new post. The author's name and avatar are copied onto the
// post as a snapshot; later account edits do not rewrite old posts.
func (s *PostService) Create(ctx context.Context, callerID, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}
	if len(text) > MaxPostTextLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("text must be %d characters or less", MaxPostTextLength))
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID: callerID,
		Text:   text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("userID", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("userID", callerID),
	)

	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]model.Post, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post. Only the post's owner may delete it.
func (s *PostService) Delete(ctx context.Context, callerID, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := requireOwner(callerID, post.UserID, "post"); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	s.logger.Info("post deleted",
		slog.String("postID", postID),
		slog.String("userID", callerID),
	)
	return nil
}

// Like appends the caller to a post's like set and returns the updated set.
// A second like by the same caller is rejected with Conflict and changes
// nothing; callers treat that as non-fatal.
func (s *PostService) Like(ctx context.Context, callerID, postID string) ([]model.Like, error) {
	if err := s.posts.AddLike(ctx, postID, callerID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Unlike removes the caller's like, located by the caller's identity.
// The like belongs to the caller by construction, so the ownership rule
// holds without a separate comparison; an absent like is NotFound.
func (s *PostService) Unlike(ctx context.Context, callerID, postID string) ([]model.Like, error) {
	if err := s.posts.RemoveLike(ctx, postID, callerID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment prepends a comment with a fresh sub-id and the caller's
// name/avatar snapshot, and returns the updated comment list.
func (s *PostService) AddComment(ctx context.Context, callerID, postID, text string) ([]model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "text is required")
	}
	if len(text) > MaxPostTextLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("text must be %d characters or less", MaxPostTextLength))
	}

	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID: callerID,
		Text:   text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}

	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		slog.String("postID", postID),
		slog.String("commentID", comment.ID),
		slog.String("userID", callerID),
	)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// RemoveComment deletes one comment by its stable sub-id. The comment is
// resolved with a pure lookup first; only its author passes the ownership
// gate, and exactly the resolved comment is removed.
func (s *PostService) RemoveComment(ctx context.Context, callerID, postID, commentID string) ([]model.Comment, error) {
	comment, err := s.posts.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, comment.UserID, "comment"); err != nil {
		return nil, err
	}

	if err := s.posts.RemoveComment(ctx, postID, commentID); err != nil {
		return nil, err
	}

	s.logger.Info("comment removed",
		slog.String("postID", postID),
		slog.String("commentID", commentID),
		slog.String("userID", callerID),
	)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}
