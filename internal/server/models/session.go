package models

import "time"

// Session is the server-side record behind an issued access token. Its ID is
// embedded in the token as the jti claim; a token only verifies while its
// session row exists, is unexpired, and is not revoked.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Revoked reports whether the session has been explicitly revoked.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}
