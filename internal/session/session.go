package session

import (
	"time"
)

// User is the profile returned by the auth service.
// JSON tags match the wire format of /api/auth/login/ and /api/auth/profile/.
type User struct {
	ID         int       `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsVerified bool      `json:"is_verified"`
	DateJoined time.Time `json:"date_joined"`
}

// DisplayName returns the user's full name, falling back to the email
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Session is the authenticated identity held by the client.
// A token is present if and only if a user is present.
type Session struct {
	User  *User
	Token string
}

// Valid reports whether the session satisfies the user/token pairing invariant
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	return s.User != nil && s.Token != ""
}

// clone returns a deep copy so callers can never mutate stored state
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	userCopy := *s.User
	return &Session{User: &userCopy, Token: s.Token}
}
