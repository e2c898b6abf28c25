package model

import (
	"time"
)

type Post struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Slug        string    `db:"slug"`
	Content     string    `db:"content"`
	HTMLContent string    `db:"html_content"`
	IsPublished bool      `db:"is_published"`
	AuthorID    string    `db:"author_id"`
	CategoryID  *int64    `db:"category_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// Loaded relations (not in the posts table)
	Media    []*PostMedia `db:"-"`
	Comments []*Comment   `db:"-"`
	Likes    int          `db:"-"`
}

type Category struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// MediaType is a closed discriminator for attached post media.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeImage, MediaTypeVideo, MediaTypeAudio:
		return true
	}
	return false
}

type PostMedia struct {
	ID          string    `db:"id"`
	PostID      string    `db:"post_id"`
	StoragePath string    `db:"storage_path"`
	MediaType   MediaType `db:"media_type"`
	CreatedAt   time.Time `db:"created_at"`
}
