// Package models holds the request and response shapes the CLI exchanges
// with the gophauth HTTP API.
package models

import "time"

type RegisterRequest struct {
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// AuthResult mirrors the server's register/login response.
type AuthResult struct {
	Message       string     `json:"message"`
	Authenticated bool       `json:"authenticated"`
	UserName      string     `json:"username"`
	Email         string     `json:"email"`
	Roles         []string   `json:"roles"`
	Token         string     `json:"token"`
	ExpiresAt     *time.Time `json:"expiresAt"`
}

type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Identity is the verified content of a token as reported by /auth/me.
type Identity struct {
	Claims    []Claim   `json:"claims"`
	Issuer    string    `json:"issuer"`
	Audience  []string  `json:"audience"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Problem is the validation error body returned with status 400.
type Problem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}
