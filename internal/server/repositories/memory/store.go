// Package memory holds process-local users and roles repositories used when
// no database is configured and by tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// DefaultRoles are seeded into every new Store, mirroring the SQL migration.
var DefaultRoles = []string{"User", "Admin"}

type membership struct {
	roleID int64
	userID string
}

// Store keeps users, roles, memberships and user claims behind one lock.
type Store struct {
	mu sync.RWMutex

	users       map[string]*models.Credential
	byUserName  map[string]string
	byEmail     map[string]string
	claims      map[string][]models.UserClaim
	roles       map[string]*models.Role
	nextRoleID  int64
	memberships map[membership]struct{}
	assigned    map[string][]int64

	now func() time.Time
}

// NewStore returns an empty store seeded with DefaultRoles.
func NewStore() *Store {
	s := &Store{
		users:       make(map[string]*models.Credential),
		byUserName:  make(map[string]string),
		byEmail:     make(map[string]string),
		claims:      make(map[string][]models.UserClaim),
		roles:       make(map[string]*models.Role),
		memberships: make(map[membership]struct{}),
		assigned:    make(map[string][]int64),
		now:         time.Now,
	}
	for _, name := range DefaultRoles {
		s.AddRole(name)
	}
	return s
}

// AddRole registers a role if its normalized name is not taken yet and
// returns the stored role.
func (s *Store) AddRole(name string) *models.Role {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToUpper(name)
	if r, ok := s.roles[key]; ok {
		return r
	}
	s.nextRoleID++
	r := &models.Role{ID: s.nextRoleID, Name: name}
	s.roles[key] = r
	return r
}

// AddClaim attaches an extra claim to a user.
func (s *Store) AddClaim(userID string, claim models.UserClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return common.ErrorNotFound
	}
	s.claims[userID] = append(s.claims[userID], claim)
	return nil
}

// Users returns the users repository view of the store.
func (s *Store) Users() *UsersRepository { return &UsersRepository{s: s} }

// Roles returns the roles repository view of the store.
func (s *Store) Roles() *RolesRepository { return &RolesRepository{s: s} }

type UsersRepository struct {
	s *Store
}

func (r *UsersRepository) Create(ctx context.Context, c *models.Credential) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.ID]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := s.byEmail[c.NormalizedEmail]; ok {
		return users.ErrDuplicateEmail
	}
	if _, ok := s.byUserName[c.NormalizedUserName]; ok {
		return users.ErrDuplicateUserName
	}

	c.CreatedAt = s.now().UTC()
	stored := *c
	s.users[c.ID] = &stored
	s.byEmail[c.NormalizedEmail] = c.ID
	s.byUserName[c.NormalizedUserName] = c.ID
	return nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.copyUser(id)
}

func (r *UsersRepository) GetByNormalizedEmail(ctx context.Context, email string) (*models.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.copyUser(r.s.byEmail[email])
}

func (r *UsersRepository) GetByNormalizedUserName(ctx context.Context, userName string) (*models.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.copyUser(r.s.byUserName[userName])
}

func (r *UsersRepository) ListClaims(ctx context.Context, userID string) ([]models.UserClaim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]models.UserClaim(nil), r.s.claims[userID]...), nil
}

// copyUser expects the read lock to be held.
func (s *Store) copyUser(id string) (*models.Credential, error) {
	c, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

type RolesRepository struct {
	s *Store
}

func (r *RolesRepository) GetByNormalizedName(ctx context.Context, name string) (*models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *role
	return &out, nil
}

func (r *RolesRepository) ListForUser(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var names []string
	for _, id := range r.s.assigned[userID] {
		for _, role := range r.s.roles {
			if role.ID == id {
				names = append(names, role.Name)
				break
			}
		}
	}
	return names, nil
}

func (r *RolesRepository) HasUser(ctx context.Context, roleID int64, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.memberships[membership{roleID: roleID, userID: userID}]
	return ok, nil
}

func (r *RolesRepository) AddUser(ctx context.Context, roleID int64, userID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return common.ErrorNotFound
	}
	key := membership{roleID: roleID, userID: userID}
	if _, ok := s.memberships[key]; ok {
		return common.ErrorAlreadyExists
	}
	s.memberships[key] = struct{}{}
	s.assigned[userID] = append(s.assigned[userID], roleID)
	return nil
}
