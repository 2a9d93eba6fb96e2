package domain

import "time"

// TokenClaims are the identity fields embedded in a session token. A token is
// immutable once issued; a new login reissues rather than extends.
type TokenClaims struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
