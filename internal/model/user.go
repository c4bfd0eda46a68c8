// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account, the identity every owned resource
// points back to.
//
// Email is the unique external handle. Uniqueness is case-insensitive and is
// enforced by the database (UNIQUE COLLATE NOCASE), not by an application-level
// existence check, so two concurrent registrations with the same email cannot
// both succeed.
//
// PasswordHash is a bcrypt hash and is never serialized. It is empty for
// accounts created through GitHub OAuth; password login for those accounts
// fails with invalid credentials.
//
// GitHubID is non-zero only for OAuth-registered accounts. It is GitHub's
// stable numeric user ID, kept separate from our own xid primary key.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"` // gravatar identicon URL derived from the email
	GitHubID     int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
