package models

import "time"

// Gender values accepted for students.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Valid reports whether g is an accepted value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Student is a library member identified by a unique enrollment number.
type Student struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Name       string    `db:"name" json:"name"`
	Enrollment string    `db:"enrollment" json:"enrollment"`
	Address    string    `db:"address" json:"address"`
	Phone      string    `db:"phone" json:"phone"`
	Gender     Gender    `db:"gender" json:"gender"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Gender   *Gender
	Search   string
	Page     int
	PageSize int
}
