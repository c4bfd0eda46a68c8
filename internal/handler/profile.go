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

// ProfileHandler exposes the profile, its history lists, the GitHub repos
// listing, and account deletion (which removes the profile with it).
type ProfileHandler struct {
	profiles *service.ProfileService
	accounts *service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, accounts *service.AuthService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		accounts: accounts,
		validate: validator.New(),
		logger:   logger,
	}
}

// HandleGetMine returns the caller's own profile.
//
// HTTP: GET /api/profile (authenticated)
func (h *ProfileHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type profileRequest struct {
	Status         string `json:"status" validate:"required"`
	Skills         string `json:"skills" validate:"required"`
	Company        string `json:"company"`
	Website        string `json:"website" validate:"omitempty,url"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubUsername"`
	YouTube        string `json:"youtube" validate:"omitempty,url"`
	Facebook       string `json:"facebook" validate:"omitempty,url"`
	Twitter        string `json:"twitter" validate:"omitempty,url"`
	LinkedIn       string `json:"linkedin" validate:"omitempty,url"`
	Instagram      string `json:"instagram" validate:"omitempty,url"`
}

// HandleUpsert creates or partially updates the caller's profile.
//
// HTTP: POST /api/profile (authenticated)
func (h *ProfileHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	profile, err := h.profiles.Upsert(r.Context(), userID, service.ProfileInput{
		Status:         req.Status,
		Skills:         req.Skills,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		GitHubUsername: req.GitHubUsername,
		YouTube:        req.YouTube,
		Facebook:       req.Facebook,
		Twitter:        req.Twitter,
		LinkedIn:       req.LinkedIn,
		Instagram:      req.Instagram,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleList returns all profiles.
//
// HTTP: GET /api/profile/all
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	profiles, err := h.profiles.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// HandleGetByUserID returns another user's profile.
//
// HTTP: GET /api/profile/user/{id}
func (h *ProfileHandler) HandleGetByUserID(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type experienceRequest struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// HandleAddExperience prepends a work-history entry.
//
// HTTP: PUT /api/profile/experience (authenticated)
func (h *ProfileHandler) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req experienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	profile, err := h.profiles.AddExperience(r.Context(), userID, service.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleRemoveExperience deletes one work-history entry by its id.
//
// HTTP: DELETE /api/profile/experience/{id} (authenticated, owner only)
func (h *ProfileHandler) HandleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.profiles.RemoveExperience(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type educationRequest struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"fieldOfStudy" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// HandleAddEducation prepends an education-history entry.
//
// HTTP: PUT /api/profile/education (authenticated)
func (h *ProfileHandler) HandleAddEducation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req educationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, validationError(err))
		return
	}

	profile, err := h.profiles.AddEducation(r.Context(), userID, service.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleRemoveEducation deletes one education-history entry by its id.
//
// HTTP: DELETE /api/profile/education/{id} (authenticated, owner only)
func (h *ProfileHandler) HandleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	profile, err := h.profiles.RemoveEducation(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleGitHubRepos returns the newest public repositories for a GitHub
// username.
//
// HTTP: GET /api/profile/github/{username}
func (h *ProfileHandler) HandleGitHubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.profiles.Repos(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, repos)
}

// HandleDeleteAccount hard-deletes the caller's account; the profile and
// the caller's posts go with it.
//
// HTTP: DELETE /api/profile (authenticated)
func (h *ProfileHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.accounts.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
