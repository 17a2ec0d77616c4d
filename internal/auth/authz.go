package auth

import "github.com/myflix/movie-api/internal/models"

// CanModify is the single owner-only authorization predicate: a user
// may mutate a resource only when their immutable id matches the
// resource's owning id. This is an authorization check, separate from
// the authentication the access guard performs.
func CanModify(current *models.User, ownerID string) bool {
	return current != nil && current.UserID != "" && current.UserID == ownerID
}
