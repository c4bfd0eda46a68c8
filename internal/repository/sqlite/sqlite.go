// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver.
//
// Concurrency: every read-modify-write (profile upsert, guarded removal)
// runs inside a single transaction, and the uniqueness invariants (one
// account per email, one like per user per post) live in the schema as
// UNIQUE constraints. Two racing writers therefore cannot interleave a
// check with a write; the loser surfaces a constraint violation that the
// repository maps to the application error taxonomy.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB pool and exposes one store per aggregate. The stores
// share the pool, so cross-aggregate cascades stay within one database.
type DB struct {
	conn *sql.DB

	Users    *UserStore
	Profiles *ProfileStore
	Posts    *PostStore
}

// New opens the database at dbPath (":memory:" for tests) and runs the
// schema migration.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single pooled connection: SQLite serializes writers anyway, and this
	// keeps ":memory:" databases coherent (each new connection would
	// otherwise open its own empty database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads during a write; foreign_keys carries the
	// account-deletion cascades; busy_timeout bounds lock waits instead of
	// failing immediately under write contention.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	db := &DB{
		conn:     conn,
		Users:    &UserStore{conn: conn},
		Profiles: &ProfileStore{conn: conn},
		Posts:    &PostStore{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	// users.email is unique case-insensitively; the uniqueness invariant
	// lives here, not in an application-level existence check.
	// github_id is unique only for OAuth accounts (non-zero).
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email
			ON users(email COLLATE NOCASE);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// profiles.user_id UNIQUE carries the one-profile-per-account invariant.
	// All child rows cascade on account deletion.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			company         TEXT NOT NULL DEFAULT '',
			website         TEXT NOT NULL DEFAULT '',
			location        TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			skills          TEXT NOT NULL,
			bio             TEXT NOT NULL DEFAULT '',
			github_username TEXT NOT NULL DEFAULT '',
			youtube         TEXT NOT NULL DEFAULT '',
			facebook        TEXT NOT NULL DEFAULT '',
			twitter         TEXT NOT NULL DEFAULT '',
			linkedin        TEXT NOT NULL DEFAULT '',
			instagram       TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS profile_experience (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			company     TEXT NOT NULL,
			location    TEXT NOT NULL DEFAULT '',
			from_date   TEXT NOT NULL,
			to_date     TEXT NOT NULL DEFAULT '',
			current     INTEGER NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_experience_user_id
			ON profile_experience(user_id);

		CREATE TABLE IF NOT EXISTS profile_education (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			school         TEXT NOT NULL,
			degree         TEXT NOT NULL,
			field_of_study TEXT NOT NULL,
			from_date      TEXT NOT NULL,
			to_date        TEXT NOT NULL DEFAULT '',
			current        INTEGER NOT NULL DEFAULT 0,
			description    TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_education_user_id
			ON profile_education(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating profile tables: %w", err)
	}

	// post_likes' composite primary key carries the at-most-one-like-per-user
	// invariant; a double-like is a constraint violation, not a lost update.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			avatar     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);

		CREATE TABLE IF NOT EXISTS post_likes (
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (post_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS post_comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			avatar     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON post_comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating post tables: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE (or primary key)
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a SQLite FOREIGN KEY
// constraint failure, an insert against a parent row that does not exist.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
