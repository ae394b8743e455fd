package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/roles"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to one storage backend.
// Repositories obtained from the manager passed to a WithTx callback share
// that unit of work.
type RepositoryManager interface {
	Users() users.Repository
	Roles() roles.Repository
	WithTx(ctx context.Context, fn func(ctx context.Context, tx RepositoryManager) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}
