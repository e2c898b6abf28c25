package model

import "time"

const (
	GenderMale           = "male"
	GenderFemale         = "female"
	GenderOther          = "other"
	GenderPreferNotToSay = "prefer_not_to_say"
)

type Profile struct {
	UserID         string    `db:"user_id"`
	Bio            string    `db:"bio"`
	About          string    `db:"about"`
	ProfilePicture string    `db:"profile_picture"`
	CoverPhoto     string    `db:"cover_photo"`
	Website        string    `db:"website"`
	Location       string    `db:"location"`
	Gender         string    `db:"gender"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
