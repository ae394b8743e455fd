package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("request rejected")
	ErrServer       = errors.New("server error")
)

// APIError is a non-2xx response. Kind is one of the sentinel errors above.
type APIError struct {
	Kind    error
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s", e.Status, e.Message)
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, strings.Join(e.Fields[name], " "))
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Kind }

func problemError(status int, p *models.Problem) *APIError {
	return &APIError{Kind: ErrRejected, Status: status, Message: p.Title, Fields: p.Errors}
}
