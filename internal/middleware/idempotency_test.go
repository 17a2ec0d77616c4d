package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsReadOnlyMethod tests which methods bypass idempotency handling
func TestIsReadOnlyMethod(t *testing.T) {
	assert.True(t, isReadOnlyMethod(http.MethodGet))
	assert.True(t, isReadOnlyMethod(http.MethodHead))
	assert.True(t, isReadOnlyMethod(http.MethodOptions))

	assert.False(t, isReadOnlyMethod(http.MethodPost))
	assert.False(t, isReadOnlyMethod(http.MethodPut))
	assert.False(t, isReadOnlyMethod(http.MethodDelete))
}

// TestShouldCacheHeader tests the replay header allowlist
func TestShouldCacheHeader(t *testing.T) {
	i := &IdempotencyMiddleware{}

	assert.True(t, i.shouldCacheHeader("Content-Type"))
	assert.True(t, i.shouldCacheHeader("content-type"))
	assert.True(t, i.shouldCacheHeader("Location"))

	assert.False(t, i.shouldCacheHeader("Set-Cookie"))
	assert.False(t, i.shouldCacheHeader("Authorization"))
}

// TestExtractHostname tests host:port splitting for TLS server names
func TestExtractHostname(t *testing.T) {
	assert.Equal(t, "redis.example.com", extractHostname("redis.example.com:6379"))
	assert.Equal(t, "localhost", extractHostname("localhost:6379"))
	assert.Equal(t, "redis.example.com", extractHostname("redis.example.com"))
}
