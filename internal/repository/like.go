package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type LikeRepository interface {
	Toggle(postID, userID string) (bool, error)
	Exists(postID, userID string) (bool, error)
	CountByPost(postID string) (int, error)
}

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle deletes the like row if present, inserts it otherwise, and reports
// the resulting state. Both steps run in one transaction; the unique
// (user_id, post_id) constraint is the backstop for a concurrent double
// submission, which can therefore never produce two rows.
func (r *likeRepository) Toggle(postID, userID string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		return false, tx.Commit()
	}

	_, err = tx.Exec(`
		INSERT INTO likes (post_id, user_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, postID, userID, time.Now())
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *likeRepository) Exists(postID, userID string) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	return count > 0, err
}

func (r *likeRepository) CountByPost(postID string) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID)
	return count, err
}
