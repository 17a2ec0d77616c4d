package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myflix/movie-api/internal/models"
)

// TestLogin_Success tests credential verification and token issuance
func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "alicejones", "password123")

	resp := env.do(t, http.MethodPost, "/login", "", models.LoginRequest{
		Username: "alicejones",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.LoginResponse
	decodeJSON(t, resp, &body)

	require.NotNil(t, body.User)
	assert.Equal(t, "user-1", body.User.UserID)
	require.NotEmpty(t, body.Token)

	// The token must verify against the service codec and carry the
	// immutable user id as subject.
	subject, err := env.codec.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

// TestLogin_GenericRejection tests that unknown users and wrong
// passwords are indistinguishable from the response alone
func TestLogin_GenericRejection(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user-1", "alicejones", "password123")

	wrongPassword := env.do(t, http.MethodPost, "/login", "", models.LoginRequest{
		Username: "alicejones",
		Password: "notherpassword",
	})
	unknownUser := env.do(t, http.MethodPost, "/login", "", models.LoginRequest{
		Username: "nosuchuser",
		Password: "password123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownUser.StatusCode)

	codeA, messageA := decodeError(t, wrongPassword)
	codeB, messageB := decodeError(t, unknownUser)

	assert.Equal(t, "INVALID_CREDENTIALS", codeA)
	assert.Equal(t, codeA, codeB)
	assert.Equal(t, "Invalid username or password", messageA)
	assert.Equal(t, messageA, messageB)
}

// TestLogin_BadBody tests malformed request handling
func TestLogin_BadBody(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/login", "", "not a json object")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
