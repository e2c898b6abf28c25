package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/model"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	ByPost(postID string) ([]*model.Comment, error)
	CountByPost(postID string) (int, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO comments (id, post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	return err
}

// ByPost returns comments in display order, oldest first.
func (r *commentRepository) ByPost(postID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Select(&comments, `SELECT * FROM comments WHERE post_id = $1 ORDER BY created_at ASC`, postID)
	return comments, err
}

func (r *commentRepository) CountByPost(postID string) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID)
	return count, err
}
