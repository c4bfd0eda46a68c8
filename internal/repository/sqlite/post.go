package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/SimasDei/dev-bastion/internal/apperror"
	"github.com/SimasDei/dev-bastion/internal/model"
	"github.com/SimasDei/dev-bastion/internal/repository"
)

// PostStore persists posts with their likes and comments.
type PostStore struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostStore)(nil)

// Create inserts a new post. Name and Avatar are the author snapshot taken
// by the service at creation time.
func (db *PostStore) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, text, name, avatar, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, post.UserID, post.Text, post.Name, post.Avatar, post.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", post.UserID)
		}
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	if post.Likes == nil {
		post.Likes = []model.Like{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}

	return nil
}

// GetByID returns the post aggregate: the row plus its likes and comments,
// both most-recent-first.
func (db *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, text, name, avatar, created_at
		 FROM posts WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	if p.Likes, err = db.listLikes(ctx, id); err != nil {
		return nil, err
	}
	if p.Comments, err = db.listComments(ctx, id); err != nil {
		return nil, err
	}

	return &p, nil
}

// List returns posts newest-first with their embedded likes and comments.
func (db *PostStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, text, name, avatar, created_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	for i := range posts {
		if posts[i].Likes, err = db.listLikes(ctx, posts[i].ID); err != nil {
			return nil, err
		}
		if posts[i].Comments, err = db.listComments(ctx, posts[i].ID); err != nil {
			return nil, err
		}
	}

	return posts, nil
}

// Delete removes a post; likes and comments cascade.
func (db *PostStore) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// AddLike records that userID likes the post. The (post_id, user_id)
// primary key makes the like idempotence explicit: a second like by the
// same user is a constraint violation, returned as Conflict with the like
// set unchanged; no read-then-write window exists for two likes to race
// through.
func (db *PostStore) AddLike(ctx context.Context, postID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("like", "post already liked")
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("post", postID)
		}
		return fmt.Errorf("sqlite: liking post %s: %w", postID, err)
	}

	return nil
}

// RemoveLike removes exactly userID's like, located by its owner identity;
// never by a positional index.
func (db *PostStore) RemoveLike(ctx context.Context, postID, userID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unliking post %s: %w", postID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: unliking post %s: %w", postID, err)
	}
	if affected == 0 {
		return apperror.NotFound("like", postID)
	}

	return nil
}

// AddComment prepends a comment to the post.
func (db *PostStore) AddComment(ctx context.Context, postID string, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO post_comments (id, post_id, user_id, text, name, avatar, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID, postID, comment.UserID, comment.Text,
		comment.Name, comment.Avatar, comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("post", postID)
		}
		return fmt.Errorf("sqlite: inserting comment on post %s: %w", postID, err)
	}

	return nil
}

// GetComment resolves a comment by its stable sub-id within a post. This is
// a pure lookup with no side effects; the service uses the returned owner
// for its permission check before removal.
func (db *PostStore) GetComment(ctx context.Context, postID, commentID string) (*model.Comment, error) {
	var c model.Comment

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, text, name, avatar, created_at
		 FROM post_comments WHERE id = ? AND post_id = ?`,
		commentID, postID,
	).Scan(&c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", commentID)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", commentID, err)
	}

	return &c, nil
}

// RemoveComment deletes exactly the comment with the given sub-id.
func (db *PostStore) RemoveComment(ctx context.Context, postID, commentID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM post_comments WHERE id = ? AND post_id = ?`,
		commentID, postID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", commentID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", commentID, err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", commentID)
	}

	return nil
}

func (db *PostStore) listLikes(ctx context.Context, postID string) ([]model.Like, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, created_at FROM post_likes
		 WHERE post_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing likes for post %s: %w", postID, err)
	}
	defer rows.Close()

	likes := []model.Like{}
	for rows.Next() {
		var l model.Like
		if err := rows.Scan(&l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning like: %w", err)
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (db *PostStore) listComments(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, text, name, avatar, created_at
		 FROM post_comments
		 WHERE post_id = ?
		 ORDER BY id DESC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
