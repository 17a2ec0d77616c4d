package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myflix/movie-api/internal/models"
)

// TestCanModify tests the owner-only predicate
func TestCanModify(t *testing.T) {
	owner := &models.User{UserID: "user-1"}

	assert.True(t, CanModify(owner, "user-1"))
	assert.False(t, CanModify(owner, "user-2"))
	assert.False(t, CanModify(nil, "user-1"))
	assert.False(t, CanModify(&models.User{}, ""))
}
