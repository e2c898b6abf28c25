package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/model"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	ByID(id int64) (*model.Category, error)
	All() ([]*model.Category, error)
	GetOrCreate(name string) (*model.Category, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ByID(id int64) (*model.Category, error) {
	category := &model.Category{}
	err := r.db.Get(category, `SELECT * FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	return category, err
}

func (r *categoryRepository) All() ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.Select(&categories, `SELECT * FROM categories ORDER BY name`)
	return categories, err
}

// GetOrCreate matches case-insensitively, same as the post editor's
// category picker expects.
func (r *categoryRepository) GetOrCreate(name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	category := &model.Category{}

	err := r.db.Get(category, `SELECT * FROM categories WHERE LOWER(name) = LOWER($1)`, name)
	if err == nil {
		return category, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	_, err = r.db.Exec(`INSERT INTO categories (name) VALUES ($1)`, name)
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	// Re-read; a concurrent insert of the same name resolves here too.
	err = r.db.Get(category, `SELECT * FROM categories WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		return nil, err
	}
	return category, nil
}
