package auth

import "trackmymess/internal/models"

// Principal is the authenticated caller attached to a request. It is built
// from the live user record on every request, never from token claims.
type Principal struct {
	ID       uint
	Username string
	Role     models.Role
	MessID   *uint
}

// FromUser builds a Principal from a freshly loaded user record.
func FromUser(u *models.User) *Principal {
	return &Principal{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		MessID:   u.MessID,
	}
}

// IsAdmin reports whether the caller has unrestricted scope.
func (p *Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanAccessMess reports whether the caller may touch entities of the given
// mess. Admins see everything; owners only their bound mess.
func (p *Principal) CanAccessMess(messID uint) bool {
	if p.IsAdmin() {
		return true
	}
	return p.MessID != nil && *p.MessID == messID
}
