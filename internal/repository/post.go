package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/model"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

// PostCounts is a post row annotated with its current ledger cardinalities.
type PostCounts struct {
	model.Post
	LikeCount    int `db:"like_count"`
	CommentCount int `db:"comment_count"`
}

type PostRepository interface {
	Create(post *model.Post) error
	ByID(id string) (*model.Post, error)
	BySlug(slug string) (*model.Post, error)
	ListPublished() ([]*model.Post, error)
	ByAuthor(authorID string) ([]*model.Post, error)
	Update(post *model.Post) error
	DeleteCascade(id string) ([]string, error)
	CountsByAuthor(authorID string) ([]*PostCounts, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = now
	}

	query := `
		INSERT INTO posts (id, title, slug, content, html_content, is_published, author_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(query,
		post.ID,
		post.Title,
		post.Slug,
		post.Content,
		post.HTMLContent,
		post.IsPublished,
		post.AuthorID,
		post.CategoryID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *postRepository) ByID(id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.Get(post, `SELECT * FROM posts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (r *postRepository) BySlug(slug string) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.Get(post, `SELECT * FROM posts WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (r *postRepository) ListPublished() ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.Select(&posts, `SELECT * FROM posts WHERE is_published = TRUE ORDER BY created_at DESC`)
	return posts, err
}

func (r *postRepository) ByAuthor(authorID string) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.Select(&posts, `SELECT * FROM posts WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	return posts, err
}

func (r *postRepository) Update(post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, slug = $2, content = $3, html_content = $4, is_published = $5, category_id = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.Exec(query,
		post.Title,
		post.Slug,
		post.Content,
		post.HTMLContent,
		post.IsPublished,
		post.CategoryID,
		time.Now(),
		post.ID,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeleteCascade removes the post together with its media, comments and likes
// in one transaction, so a half-deleted post is never visible. Returns the
// storage paths of the removed media so the caller can clean up the objects.
func (r *postRepository) DeleteCascade(id string) ([]string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var paths []string
	err = tx.Select(&paths, `SELECT storage_path FROM post_media WHERE post_id = $1`, id)
	if err != nil {
		return nil, err
	}

	for _, query := range []string{
		`DELETE FROM post_media WHERE post_id = $1`,
		`DELETE FROM comments WHERE post_id = $1`,
		`DELETE FROM likes WHERE post_id = $1`,
		`DELETE FROM ratings WHERE post_id = $1`,
	} {
		_, err = tx.Exec(query, id)
		if err != nil {
			return nil, err
		}
	}

	result, err := tx.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrPostNotFound
	}

	return paths, tx.Commit()
}

// CountsByAuthor computes like and comment counts from the current rows;
// nothing is cached.
func (r *postRepository) CountsByAuthor(authorID string) ([]*PostCounts, error) {
	var posts []*PostCounts
	query := `
		SELECT p.*,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
	`
	err := r.db.Select(&posts, query, authorID)
	return posts, err
}
