package identity

import "time"

// User represents one registered account. Email is the login identifier,
// stored lowercased and trimmed. The password hash never appears in any
// serialized form of the user.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "First Last", falling back to the email when both name
// parts are empty.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

// Registration is the candidate input for creating an account.
type Registration struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// ProfileUpdate carries the mutable profile fields. A nil pointer means the
// field was absent from the request and must be left untouched.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Profile is the public view of a User returned by the API.
type Profile struct {
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile projects the user onto its public representation.
func (u User) Profile() Profile {
	return Profile{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
