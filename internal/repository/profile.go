package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/visiobyte/inkwell/internal/model"
)

type ProfileRepository interface {
	ByUserID(userID string) (*model.Profile, error)
	Create(profile *model.Profile) error
	Update(profile *model.Profile) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM user_profiles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(profile *model.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}
	if profile.Gender == "" {
		profile.Gender = model.GenderPreferNotToSay
	}

	_, err := r.db.Exec(`
		INSERT INTO user_profiles (user_id, bio, about, profile_picture, cover_photo, website, location, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, profile.UserID, profile.Bio, profile.About, profile.ProfilePicture, profile.CoverPhoto,
		profile.Website, profile.Location, profile.Gender, profile.CreatedAt, profile.UpdatedAt)

	return err
}

func (r *profileRepository) Update(profile *model.Profile) error {
	result, err := r.db.Exec(`
		UPDATE user_profiles
		SET bio = $1, about = $2, profile_picture = $3, cover_photo = $4, website = $5, location = $6, gender = $7, updated_at = $8
		WHERE user_id = $9
	`, profile.Bio, profile.About, profile.ProfilePicture, profile.CoverPhoto,
		profile.Website, profile.Location, profile.Gender, time.Now(), profile.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}
