package models

import (
	"regexp"
	"strings"
	"time"
)

// User represents a registered account. The password hash is never
// serialized to JSON; favorites holds movie ids as an unordered set.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"` // Primary Key, immutable
	Name         string    `json:"name" dynamodbav:"name"`
	Username     string    `json:"username" dynamodbav:"username"` // Unique, GSI username-index
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Email        string    `json:"email" dynamodbav:"email"`
	Birthdate    string    `json:"birthdate,omitempty" dynamodbav:"birthdate,omitempty"`
	Favorites    []string  `json:"favorites" dynamodbav:"favorites,stringset,omitempty"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// HasFavorite reports whether movieID is in the user's favorites set.
func (u *User) HasFavorite(movieID string) bool {
	for _, id := range u.Favorites {
		if id == movieID {
			return true
		}
	}
	return false
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents registration request payload
type RegisterRequest struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate"`
}

// UpdateUserRequest represents a partial profile update. Empty fields
// are left untouched.
type UpdateUserRequest struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate"`
}

// LoginResponse is returned from POST /login
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UserProfile is the trimmed PUT /users/:id response body.
type UserProfile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Birthdate string `json:"birthdate,omitempty"`
}

var (
	usernameExp = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailExp    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	minUsernameLen = 5
	minPasswordLen = 8
)

// Validate checks the registration payload and returns the list of
// violations, empty when the payload is acceptable.
func (r *RegisterRequest) Validate() []string {
	var errs []string

	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "Name is required")
	}

	if r.Username == "" {
		errs = append(errs, "Username is required")
	} else {
		errs = append(errs, validateUsername(r.Username)...)
	}

	if r.Password == "" {
		errs = append(errs, "Password is required")
	} else if len(r.Password) < minPasswordLen {
		errs = append(errs, "Password must be at least 8 characters")
	}

	if !emailExp.MatchString(r.Email) {
		errs = append(errs, "Email does not appear to be valid")
	}

	return errs
}

// Validate checks the provided subset of profile fields. Absent
// fields are not validated.
func (r *UpdateUserRequest) Validate() []string {
	var errs []string

	if r.Username != "" {
		errs = append(errs, validateUsername(r.Username)...)
	}

	if r.Password != "" && len(r.Password) < minPasswordLen {
		errs = append(errs, "Password must be at least 8 characters")
	}

	if r.Email != "" && !emailExp.MatchString(r.Email) {
		errs = append(errs, "Email does not appear to be valid")
	}

	return errs
}

// Empty reports whether the update carries no fields at all.
func (r *UpdateUserRequest) Empty() bool {
	return r.Name == "" && r.Username == "" && r.Password == "" && r.Email == "" && r.Birthdate == ""
}

func validateUsername(username string) []string {
	var errs []string
	if len(username) < minUsernameLen {
		errs = append(errs, "Username must be at least 5 characters")
	}
	if !usernameExp.MatchString(username) {
		errs = append(errs, "Username contains non-alphanumeric characters - not allowed")
	}
	return errs
}
