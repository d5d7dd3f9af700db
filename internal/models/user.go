package models

import (
	"time"
)

// User is a resource owner. ID is the uid tokens are issued to and the value
// the self-alias resolves to.
type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"` // Login username
	PasswordHash string `gorm:"not null"`             // Keyed by ID+Email, see auth.PasswordVerifier
	FirstName    string
	LastName     string
	Gender       string
	BirthDate    string
	Device       string
	UDID         string `gorm:"index"` // Device identifier, capped per device at sign up

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the public view of a User.
type Profile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	FirstName string    `json:"f_name,omitempty"`
	LastName  string    `json:"l_name,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	BirthDate string    `json:"birth_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile strips credentials and device identifiers.
func (u *User) Profile() Profile {
	return Profile{
		UID:       u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Gender:    u.Gender,
		BirthDate: u.BirthDate,
		CreatedAt: u.CreatedAt,
	}
}
