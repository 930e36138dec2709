package model

import "time"

// Gender values accepted for users and clients.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// User is a staff account as stored in the `users` table. PasswordHash is
// never serialized; handlers return Profile when a user record goes back to
// the client.
type User struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email (unique, normalized lowercase)
	PasswordHash string    // users.password_hash (bcrypt)
	Phone        string    // users.phone
	Gender       string    // users.gender
	ProfileImage string    // users.profile_image
	IsActivated  bool      // users.is_activated
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Profile is the password-free view of a User returned by the API.
type Profile struct {
	ID           uint64    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Gender       string    `json:"gender"`
	ProfileImage string    `json:"profileImage,omitempty"`
	IsActivated  bool      `json:"isActivated"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile strips the credential material from u.
func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		Gender:       u.Gender,
		ProfileImage: u.ProfileImage,
		IsActivated:  u.IsActivated,
		CreatedAt:    u.CreatedAt,
	}
}
