package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/roles"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves repositories from a memory.Store.
// WithTx serializes callbacks but cannot roll back their writes.
type InMemoryRepositoryManager struct {
	store *memory.Store
	txMu  *sync.Mutex
	inTx  bool
}

func NewInMemoryRepositoryManager(store *memory.Store) *InMemoryRepositoryManager {
	if store == nil {
		store = memory.NewStore()
	}
	return &InMemoryRepositoryManager{store: store, txMu: &sync.Mutex{}}
}

// Store exposes the backing store, e.g. for seeding claims.
func (m *InMemoryRepositoryManager) Store() *memory.Store { return m.store }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.store.Users() }

func (m *InMemoryRepositoryManager) Roles() roles.Repository { return m.store.Roles() }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, &InMemoryRepositoryManager{store: m.store, txMu: m.txMu, inTx: true})
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close() error { return nil }
