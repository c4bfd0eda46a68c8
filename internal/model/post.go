package model

import "time"

// Post is a feed entry owned by exactly one user.
//
// Name and Avatar are a denormalized snapshot of the author taken at
// creation time; they are not kept in sync with later account edits.
// Likes and Comments are embedded, most-recent-first.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like records that one user likes a post. A user appears at most once per
// post; the store enforces this with a composite primary key.
type Like struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is one embedded comment on a post. ID is a generated xid; removal
// is keyed on it with an owner check against UserID.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}
