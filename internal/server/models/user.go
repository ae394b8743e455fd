package models

import "time"

// User is the identity record handed to the authentication core. It carries
// no password material; see Credential.
type User struct {
	ID        string
	UserName  string
	Email     string
	FirstName string
	LastName  string
}

func (u *User) GetID() string       { return u.ID }
func (u *User) GetUserName() string { return u.UserName }
func (u *User) GetEmail() string    { return u.Email }

// Credential is the persistence shape of a user as stored by repositories.
// NormalizedUserName and NormalizedEmail hold the upper-cased forms used for
// case-insensitive uniqueness and lookups.
type Credential struct {
	User
	NormalizedUserName string
	NormalizedEmail    string
	PasswordHash       string
	CreatedAt          time.Time
}

// UserClaim is an extra claim attached to a user outside of role membership.
type UserClaim struct {
	Type  string
	Value string
}
