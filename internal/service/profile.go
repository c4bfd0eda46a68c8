package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/github"
	"github.com/SimasDei/dev-bastion/internal/model"
	"github.com/SimasDei/dev-bastion/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ProfileService owns the 1:1 user profile, its experience/education lists,
// and the GitHub repository listing shown alongside a profile.
type ProfileService struct {
	profiles repository.ProfileRepository
	github   *github.Client
	logger   *slog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, gh *github.Client, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		github:   gh,
		logger:   logger,
	}
}

// ProfileInput carries the pre-validated upsert fields. Status and Skills
// are required; every other field is optional and, when empty, leaves the
// stored value untouched on update.
type ProfileInput struct {
	Status         string
	Skills         string // comma-separated
	Company        string
	Website        string
	Location       string
	Bio            string
	GitHubUsername string
	YouTube        string
	Facebook       string
	Twitter        string
	LinkedIn       string
	Instagram      string
}

// SplitSkills turns the comma-joined skills input into the ordered skills
// sequence. Each segment is trimmed and blank segments are dropped, so
// "a,,b" yields ["a", "b"].
func SplitSkills(input string) []string {
	parts := strings.Split(input, ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

// Upsert creates the caller's profile or merges the provided fields into
// it. The caller's identity is the key, so no ownership comparison is
// needed; a caller can only ever upsert their own profile.
func (s *ProfileService) Upsert(ctx context.Context, callerID string, in ProfileInput) (*model.Profile, error) {
	if strings.TrimSpace(in.Status) == "" {
		return nil, apperror.ValidationFailed("status", "status is required")
	}
	skills := SplitSkills(in.Skills)
	if len(skills) == 0 {
		return nil, apperror.ValidationFailed("skills", "at least one skill is required")
	}

	profile := &model.Profile{
		UserID:         callerID,
		Status:         strings.TrimSpace(in.Status),
		Skills:         skills,
		Company:        strings.TrimSpace(in.Company),
		Website:        strings.TrimSpace(in.Website),
		Location:       strings.TrimSpace(in.Location),
		Bio:            strings.TrimSpace(in.Bio),
		GitHubUsername: strings.TrimSpace(in.GitHubUsername),
		Social: model.SocialLinks{
			YouTube:   strings.TrimSpace(in.YouTube),
			Facebook:  strings.TrimSpace(in.Facebook),
			Twitter:   strings.TrimSpace(in.Twitter),
			LinkedIn:  strings.TrimSpace(in.LinkedIn),
			Instagram: strings.TrimSpace(in.Instagram),
		},
	}

	stored, err := s.profiles.Upsert(ctx, profile)
	if err != nil {
		s.logger.Error("failed to upsert profile",
			slog.String("userID", callerID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("profile upserted", slog.String("userID", callerID))
	return stored, nil
}

// Get returns the profile for a user, with NotFound if none exists.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.profiles.GetByUserID(ctx, userID)
}

// List returns all profiles with pagination, limit clamped to a sane range.
func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]model.Profile, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	profiles, err := s.profiles.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list profiles", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

// ExperienceInput carries one pre-validated work-history entry.
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        string
	To          string
	Current     bool
	Description string
}

// AddExperience prepends a work-history entry to the caller's profile and
// returns the updated profile.
func (s *ProfileService) AddExperience(ctx context.Context, callerID string, in ExperienceInput) (*model.Profile, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if strings.TrimSpace(in.Company) == "" {
		return nil, apperror.ValidationFailed("company", "company is required")
	}
	if strings.TrimSpace(in.From) == "" {
		return nil, apperror.ValidationFailed("from", "from date is required")
	}

	exp := &model.Experience{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        in.From,
		To:          in.To,
		Current:     in.Current,
		Description: strings.TrimSpace(in.Description),
	}

	if err := s.profiles.AddExperience(ctx, callerID, exp); err != nil {
		return nil, err
	}

	s.logger.Info("experience added",
		slog.String("userID", callerID),
		slog.String("experienceID", exp.ID),
	)

	return s.profiles.GetByUserID(ctx, callerID)
}

// RemoveExperience deletes one entry by its stable id. The entry is
// resolved first; a caller who does not own it gets Forbidden, and exactly
// the resolved entry is removed. Removal is never keyed on list position.
func (s *ProfileService) RemoveExperience(ctx context.Context, callerID, experienceID string) (*model.Profile, error) {
	ownerID, err := s.profiles.GetExperienceOwner(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, ownerID, "experience entry"); err != nil {
		return nil, err
	}

	if err := s.profiles.RemoveExperience(ctx, experienceID); err != nil {
		return nil, err
	}

	s.logger.Info("experience removed",
		slog.String("userID", callerID),
		slog.String("experienceID", experienceID),
	)

	return s.profiles.GetByUserID(ctx, callerID)
}

// EducationInput carries one pre-validated education-history entry.
type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         string
	To           string
	Current      bool
	Description  string
}

func (s *ProfileService) AddEducation(ctx context.Context, callerID string, in EducationInput) (*model.Profile, error) {
	if strings.TrimSpace(in.School) == "" {
		return nil, apperror.ValidationFailed("school", "school is required")
	}
	if strings.TrimSpace(in.Degree) == "" {
		return nil, apperror.ValidationFailed("degree", "degree is required")
	}
	if strings.TrimSpace(in.FieldOfStudy) == "" {
		return nil, apperror.ValidationFailed("fieldOfStudy", "field of study is required")
	}
	if strings.TrimSpace(in.From) == "" {
		return nil, apperror.ValidationFailed("from", "from date is required")
	}

	edu := &model.Education{
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         in.From,
		To:           in.To,
		Current:      in.Current,
		Description:  strings.TrimSpace(in.Description),
	}

	if err := s.profiles.AddEducation(ctx, callerID, edu); err != nil {
		return nil, err
	}

	s.logger.Info("education added",
		slog.String("userID", callerID),
		slog.String("educationID", edu.ID),
	)

	return s.profiles.GetByUserID(ctx, callerID)
}

func (s *ProfileService) RemoveEducation(ctx context.Context, callerID, educationID string) (*model.Profile, error) {
	ownerID, err := s.profiles.GetEducationOwner(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, ownerID, "education entry"); err != nil {
		return nil, err
	}

	if err := s.profiles.RemoveEducation(ctx, educationID); err != nil {
		return nil, err
	}

	s.logger.Info("education removed",
		slog.String("userID", callerID),
		slog.String("educationID", educationID),
	)

	return s.profiles.GetByUserID(ctx, callerID)
}

// Repos proxies the GitHub repository listing for a username.
func (s *ProfileService) Repos(ctx context.Context, username string) ([]github.Repo, error) {
	return s.github.Repos(ctx, username)
}
