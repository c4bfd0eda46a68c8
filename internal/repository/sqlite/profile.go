package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/model"
	"github.com/SimasDei/dev-bastion/internal/repository"
)

// ProfileStore persists profiles with their experience and education rows.
type ProfileStore struct {
	conn *sql.DB
}

var _ repository.ProfileRepository = (*ProfileStore)(nil)

// profileColumns is the scan order shared by every profile SELECT.
const profileColumns = `id, user_id, company, website, location, status, skills,
	bio, github_username, youtube, facebook, twitter, linkedin, instagram,
	created_at, updated_at`

// Upsert creates the caller's profile if absent, otherwise merges the
// provided fields into the stored row. The whole read-check-write runs in
// one transaction, and profiles.user_id is UNIQUE, so two concurrent
// upserts for the same user cannot yield two profiles: the slower insert
// fails the constraint and is retried as an update within a fresh
// transaction.
func (db *ProfileStore) Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	result, err := db.upsertOnce(ctx, profile)
	if err != nil && isUniqueViolation(err) {
		// Lost a create race; the row exists now, so merge into it.
		result, err = db.upsertOnce(ctx, profile)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *ProfileStore) upsertOnce(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning profile upsert: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanProfile(tx.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`,
		profile.UserID,
	))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: looking up profile for user %s: %w", profile.UserID, err)
	}

	now := time.Now()
	var stored *model.Profile

	if existing != nil {
		stored = mergeProfile(existing, profile)
		stored.UpdatedAt = now

		skills, err := json.Marshal(stored.Skills)
		if err != nil {
			return nil, fmt.Errorf("sqlite: encoding skills: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE profiles SET company = ?, website = ?, location = ?, status = ?,
			 skills = ?, bio = ?, github_username = ?, youtube = ?, facebook = ?,
			 twitter = ?, linkedin = ?, instagram = ?, updated_at = ?
			 WHERE user_id = ?`,
			stored.Company, stored.Website, stored.Location, stored.Status,
			string(skills), stored.Bio, stored.GitHubUsername,
			stored.Social.YouTube, stored.Social.Facebook, stored.Social.Twitter,
			stored.Social.LinkedIn, stored.Social.Instagram,
			stored.UpdatedAt, stored.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: updating profile for user %s: %w", profile.UserID, err)
		}
	} else {
		stored = profile
		stored.ID = xid.New().String()
		stored.CreatedAt = now
		stored.UpdatedAt = now

		skills, err := json.Marshal(stored.Skills)
		if err != nil {
			return nil, fmt.Errorf("sqlite: encoding skills: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (id, user_id, company, website, location, status,
			 skills, bio, github_username, youtube, facebook, twitter, linkedin,
			 instagram, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			stored.ID, stored.UserID, stored.Company, stored.Website,
			stored.Location, stored.Status, string(skills), stored.Bio,
			stored.GitHubUsername, stored.Social.YouTube, stored.Social.Facebook,
			stored.Social.Twitter, stored.Social.LinkedIn, stored.Social.Instagram,
			stored.CreatedAt, stored.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return nil, apperror.NotFound("user", profile.UserID)
			}
			// Unique violations bubble up so Upsert can retry as an update.
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing profile upsert: %w", err)
	}

	return db.GetByUserID(ctx, stored.UserID)
}

// mergeProfile applies the provided fields of in onto existing. An empty
// incoming field means "leave the stored value untouched"; the input
// record only carries fields that were present in the request.
func mergeProfile(existing, in *model.Profile) *model.Profile {
	out := *existing

	if in.Status != "" {
		out.Status = in.Status
	}
	if len(in.Skills) > 0 {
		out.Skills = in.Skills
	}
	if in.Company != "" {
		out.Company = in.Company
	}
	if in.Website != "" {
		out.Website = in.Website
	}
	if in.Location != "" {
		out.Location = in.Location
	}
	if in.Bio != "" {
		out.Bio = in.Bio
	}
	if in.GitHubUsername != "" {
		out.GitHubUsername = in.GitHubUsername
	}
	if in.Social.YouTube != "" {
		out.Social.YouTube = in.Social.YouTube
	}
	if in.Social.Facebook != "" {
		out.Social.Facebook = in.Social.Facebook
	}
	if in.Social.Twitter != "" {
		out.Social.Twitter = in.Social.Twitter
	}
	if in.Social.LinkedIn != "" {
		out.Social.LinkedIn = in.Social.LinkedIn
	}
	if in.Social.Instagram != "" {
		out.Social.Instagram = in.Social.Instagram
	}

	return &out
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var p model.Profile
	var skills string

	err := row.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Status,
		&skills, &p.Bio, &p.GitHubUsername,
		&p.Social.YouTube, &p.Social.Facebook, &p.Social.Twitter,
		&p.Social.LinkedIn, &p.Social.Instagram,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
		return nil, fmt.Errorf("sqlite: decoding skills for profile %s: %w", p.ID, err)
	}

	return &p, nil
}

// GetByUserID returns the profile with its experience and education lists,
// both newest-first.
func (db *ProfileStore) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := scanProfile(db.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`,
		userID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}

	if p.Experience, err = db.listExperience(ctx, userID); err != nil {
		return nil, err
	}
	if p.Education, err = db.listEducation(ctx, userID); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns all profiles with their history lists, newest profile first.
func (db *ProfileStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}

	for i := range profiles {
		if profiles[i].Experience, err = db.listExperience(ctx, profiles[i].UserID); err != nil {
			return nil, err
		}
		if profiles[i].Education, err = db.listEducation(ctx, profiles[i].UserID); err != nil {
			return nil, err
		}
	}

	return profiles, nil
}

// AddExperience prepends a work-history entry to the owner's profile.
// xid IDs sort by creation time, so newest-first ordering falls out of
// ORDER BY id DESC even for entries created in the same instant.
func (db *ProfileStore) AddExperience(ctx context.Context, userID string, exp *model.Experience) error {
	exp.ID = xid.New().String()
	exp.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profile_experience (id, user_id, title, company, location,
		 from_date, to_date, current, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, userID, exp.Title, exp.Company, exp.Location,
		exp.From, exp.To, exp.Current, exp.Description, exp.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("profile", userID)
		}
		return fmt.Errorf("sqlite: inserting experience: %w", err)
	}

	return nil
}

// GetExperienceOwner resolves an experience entry to its owning user.
func (db *ProfileStore) GetExperienceOwner(ctx context.Context, experienceID string) (string, error) {
	var owner string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM profile_experience WHERE id = ?`, experienceID,
	).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("experience", experienceID)
		}
		return "", fmt.Errorf("sqlite: getting experience %s: %w", experienceID, err)
	}
	return owner, nil
}

// RemoveExperience deletes exactly the entry with the given stable id.
func (db *ProfileStore) RemoveExperience(ctx context.Context, experienceID string) error {
	return db.removeByID(ctx, "profile_experience", "experience", experienceID)
}

func (db *ProfileStore) AddEducation(ctx context.Context, userID string, edu *model.Education) error {
	edu.ID = xid.New().String()
	edu.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profile_education (id, user_id, school, degree, field_of_study,
		 from_date, to_date, current, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		edu.ID, userID, edu.School, edu.Degree, edu.FieldOfStudy,
		edu.From, edu.To, edu.Current, edu.Description, edu.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("profile", userID)
		}
		return fmt.Errorf("sqlite: inserting education: %w", err)
	}

	return nil
}

func (db *ProfileStore) GetEducationOwner(ctx context.Context, educationID string) (string, error) {
	var owner string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM profile_education WHERE id = ?`, educationID,
	).Scan(&owner)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("education", educationID)
		}
		return "", fmt.Errorf("sqlite: getting education %s: %w", educationID, err)
	}
	return owner, nil
}

func (db *ProfileStore) RemoveEducation(ctx context.Context, educationID string) error {
	return db.removeByID(ctx, "profile_education", "education", educationID)
}

// removeByID deletes one row by primary key from the given table.
// RowsAffected distinguishes a successful removal from a target that
// disappeared between lookup and delete.
func (db *ProfileStore) removeByID(ctx context.Context, table, resource, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", resource, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", resource, id, err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}

	return nil
}

func (db *ProfileStore) listExperience(ctx context.Context, userID string) ([]model.Experience, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, company, location, from_date, to_date, current, description, created_at
		 FROM profile_experience WHERE user_id = ?
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing experience for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []model.Experience{}
	for rows.Next() {
		var e model.Experience
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location,
			&e.From, &e.To, &e.Current, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning experience: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *ProfileStore) listEducation(ctx context.Context, userID string) ([]model.Education, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, school, degree, field_of_study, from_date, to_date, current, description, created_at
		 FROM profile_education WHERE user_id = ?
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing education for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []model.Education{}
	for rows.Next() {
		var e model.Education
		if err := rows.Scan(&e.ID, &e.School, &e.Degree, &e.FieldOfStudy,
			&e.From, &e.To, &e.Current, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning education: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
