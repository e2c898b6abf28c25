package model

import "time"

// Like is the join row between a user and a post. At most one row exists
// per (user_id, post_id) pair.
type Like struct {
	PostID    string    `db:"post_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
