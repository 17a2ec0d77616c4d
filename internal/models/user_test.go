package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Name:     "Jamie Jones",
		Username: "jamiejones",
		Password: "longenough",
		Email:    "jamie@example.com",
	}
}

// TestRegisterRequest_Valid tests that a well-formed payload passes
func TestRegisterRequest_Valid(t *testing.T) {
	req := validRegistration()
	assert.Empty(t, req.Validate())
}

// TestRegisterRequest_Violations tests each validation rule
func TestRegisterRequest_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(r *RegisterRequest) { r.Name = "" },
			message: "Name is required",
		},
		{
			name:    "whitespace name",
			mutate:  func(r *RegisterRequest) { r.Name = "   " },
			message: "Name is required",
		},
		{
			name:    "short username",
			mutate:  func(r *RegisterRequest) { r.Username = "abcd" },
			message: "Username must be at least 5 characters",
		},
		{
			name:    "non alphanumeric username",
			mutate:  func(r *RegisterRequest) { r.Username = "jamie.jones" },
			message: "Username contains non-alphanumeric characters - not allowed",
		},
		{
			name:    "short password",
			mutate:  func(r *RegisterRequest) { r.Password = "short" },
			message: "Password must be at least 8 characters",
		},
		{
			name:    "invalid email",
			mutate:  func(r *RegisterRequest) { r.Email = "not-an-email" },
			message: "Email does not appear to be valid",
		},
		{
			name:    "missing email",
			mutate:  func(r *RegisterRequest) { r.Email = "" },
			message: "Email does not appear to be valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			assert.Contains(t, req.Validate(), tt.message)
		})
	}
}

// TestRegisterRequest_MultipleViolations tests that all failures are reported
func TestRegisterRequest_MultipleViolations(t *testing.T) {
	req := RegisterRequest{}
	violations := req.Validate()

	assert.Contains(t, violations, "Name is required")
	assert.Contains(t, violations, "Username is required")
	assert.Contains(t, violations, "Password is required")
	assert.Contains(t, violations, "Email does not appear to be valid")
}

// TestUpdateUserRequest_SkipsAbsentFields tests partial validation
func TestUpdateUserRequest_SkipsAbsentFields(t *testing.T) {
	// An empty update is valid: absent fields are not checked.
	empty := UpdateUserRequest{}
	assert.Empty(t, empty.Validate())
	assert.True(t, empty.Empty())

	// Only the provided fields are validated.
	partial := UpdateUserRequest{Email: "new@example.com"}
	assert.Empty(t, partial.Validate())
	assert.False(t, partial.Empty())

	bad := UpdateUserRequest{Username: "ab", Password: "short"}
	violations := bad.Validate()
	assert.Contains(t, violations, "Username must be at least 5 characters")
	assert.Contains(t, violations, "Password must be at least 8 characters")
}

// TestUser_PasswordHashNeverSerialized tests the JSON contract
func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	user := User{
		UserID:       "user-1",
		Username:     "jamiejones",
		PasswordHash: "$2a$10$somethingsecret",
		Favorites:    []string{"movie-1"},
	}

	body, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(body), "somethingsecret")
	assert.NotContains(t, string(body), "password")
	assert.Contains(t, string(body), `"favorites":["movie-1"]`)
}

// TestUser_HasFavorite tests set membership
func TestUser_HasFavorite(t *testing.T) {
	user := User{Favorites: []string{"movie-1", "movie-2"}}

	assert.True(t, user.HasFavorite("movie-1"))
	assert.False(t, user.HasFavorite("movie-3"))
	assert.False(t, (&User{}).HasFavorite("movie-1"))
}
