package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/model"
	"github.com/SimasDei/dev-bastion/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory repository doubles. They implement the same error contracts as
// the sqlite stores (Conflict on duplicate handle or double-like, NotFound
// on missing rows) so the services under test see realistic behavior.

type mockUserRepo struct {
	users map[string]*model.User // keyed by ID
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperror.Conflict("user", "email already registered")
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	clone := *user
	return &clone, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.GitHubID == user.GitHubID {
			user.ID = existing.ID
			existing.Name = user.Name
			existing.Email = user.Email
			existing.Avatar = user.Avatar
			existing.UpdatedAt = time.Now()
			return nil
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

type mockProfileRepo struct {
	profiles map[string]*model.Profile // keyed by userID
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Upsert(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	existing, ok := m.profiles[profile.UserID]
	if !ok {
		profile.ID = xid.New().String()
		profile.CreatedAt = time.Now()
		profile.UpdatedAt = profile.CreatedAt
		clone := *profile
		m.profiles[profile.UserID] = &clone
		out := clone
		return &out, nil
	}

	existing.Status = profile.Status
	existing.Skills = profile.Skills
	if profile.Company != "" {
		existing.Company = profile.Company
	}
	if profile.Website != "" {
		existing.Website = profile.Website
	}
	if profile.Location != "" {
		existing.Location = profile.Location
	}
	if profile.Bio != "" {
		existing.Bio = profile.Bio
	}
	if profile.GitHubUsername != "" {
		existing.GitHubUsername = profile.GitHubUsername
	}
	existing.UpdatedAt = time.Now()
	clone := *existing
	return &clone, nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile", userID)
	}
	clone := *profile
	return &clone, nil
}

func (m *mockProfileRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	out := make([]model.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	if opts.Offset >= len(out) {
		return []model.Profile{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockProfileRepo) AddExperience(_ context.Context, userID string, exp *model.Experience) error {
	profile, ok := m.profiles[userID]
	if !ok {
		return apperror.NotFound("profile", userID)
	}
	exp.ID = xid.New().String()
	exp.CreatedAt = time.Now()
	profile.Experience = append([]model.Experience{*exp}, profile.Experience...)
	return nil
}

func (m *mockProfileRepo) GetExperienceOwner(_ context.Context, experienceID string) (string, error) {
	for userID, profile := range m.profiles {
		for _, exp := range profile.Experience {
			if exp.ID == experienceID {
				return userID, nil
			}
		}
	}
	return "", apperror.NotFound("experience entry", experienceID)
}

func (m *mockProfileRepo) RemoveExperience(_ context.Context, experienceID string) error {
	for _, profile := range m.profiles {
		for i, exp := range profile.Experience {
			if exp.ID == experienceID {
				profile.Experience = append(profile.Experience[:i], profile.Experience[i+1:]...)
				return nil
			}
		}
	}
	return apperror.NotFound("experience entry", experienceID)
}

func (m *mockProfileRepo) AddEducation(_ context.Context, userID string, edu *model.Education) error {
	profile, ok := m.profiles[userID]
	if !ok {
		return apperror.NotFound("profile", userID)
	}
	edu.ID = xid.New().String()
	edu.CreatedAt = time.Now()
	profile.Education = append([]model.Education{*edu}, profile.Education...)
	return nil
}

func (m *mockProfileRepo) GetEducationOwner(_ context.Context, educationID string) (string, error) {
	for userID, profile := range m.profiles {
		for _, edu := range profile.Education {
			if edu.ID == educationID {
				return userID, nil
			}
		}
	}
	return "", apperror.NotFound("education entry", educationID)
}

func (m *mockProfileRepo) RemoveEducation(_ context.Context, educationID string) error {
	for _, profile := range m.profiles {
		for i, edu := range profile.Education {
			if edu.ID == educationID {
				profile.Education = append(profile.Education[:i], profile.Education[i+1:]...)
				return nil
			}
		}
	}
	return apperror.NotFound("education entry", educationID)
}

type mockPostRepo struct {
	posts map[string]*model.Post
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now()
	post.Likes = []model.Like{}
	post.Comments = []model.Comment{}
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	clone := *post
	return &clone, nil
}

func (m *mockPostRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	out := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, *p)
	}
	if opts.Offset >= len(out) {
		return []model.Post{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) AddLike(_ context.Context, postID, userID string) error {
	post, ok := m.posts[postID]
	if !ok {
		return apperror.NotFound("post", postID)
	}
	for _, like := range post.Likes {
		if like.UserID == userID {
			return apperror.Conflict("like", "post already liked")
		}
	}
	post.Likes = append([]model.Like{{UserID: userID, CreatedAt: time.Now()}}, post.Likes...)
	return nil
}

func (m *mockPostRepo) RemoveLike(_ context.Context, postID, userID string) error {
	post, ok := m.posts[postID]
	if !ok {
		return apperror.NotFound("post", postID)
	}
	for i, like := range post.Likes {
		if like.UserID == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("like", userID)
}

func (m *mockPostRepo) AddComment(_ context.Context, postID string, comment *model.Comment) error {
	post, ok := m.posts[postID]
	if !ok {
		return apperror.NotFound("post", postID)
	}
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()
	post.Comments = append([]model.Comment{*comment}, post.Comments...)
	return nil
}

func (m *mockPostRepo) GetComment(_ context.Context, postID, commentID string) (*model.Comment, error) {
	post, ok := m.posts[postID]
	if !ok {
		return nil, apperror.NotFound("post", postID)
	}
	for _, c := range post.Comments {
		if c.ID == commentID {
			clone := c
			return &clone, nil
		}
	}
	return nil, apperror.NotFound("comment", commentID)
}

func (m *mockPostRepo) RemoveComment(_ context.Context, postID, commentID string) error {
	post, ok := m.posts[postID]
	if !ok {
		return apperror.NotFound("post", postID)
	}
	for i, c := range post.Comments {
		if c.ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("comment", commentID)
}
