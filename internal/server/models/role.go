package models

// Role is a named authorization grant. Names are unique.
type Role struct {
	ID   int64
	Name string
}
