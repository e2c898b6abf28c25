package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/model"
)

type MediaRepository interface {
	Create(media *model.PostMedia) error
	ByPost(postID string) ([]*model.PostMedia, error)
	Delete(id string) error
}

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(media *model.PostMedia) error {
	if media.ID == "" {
		media.ID = uuid.New().String()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO post_media (id, post_id, storage_path, media_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query,
		media.ID,
		media.PostID,
		media.StoragePath,
		media.MediaType,
		media.CreatedAt,
	)
	return err
}

func (r *mediaRepository) ByPost(postID string) ([]*model.PostMedia, error) {
	var media []*model.PostMedia
	err := r.db.Select(&media, `SELECT * FROM post_media WHERE post_id = $1 ORDER BY created_at ASC`, postID)
	return media, err
}

func (r *mediaRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM post_media WHERE id = $1`, id)
	return err
}
