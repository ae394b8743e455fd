// Package identity implements user credential and role storage on top of the
// repositories: it normalizes names, enforces the account policy, hashes
// passwords and keeps role membership consistent.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/google/uuid"
)

// ErrRoleNotFound is returned by AddToRole for an unknown role.
var ErrRoleNotFound = fmt.Errorf("role %w", common.ErrorNotFound)

type Manager struct {
	rm     repomanager.RepositoryManager
	hasher password.Hasher
	policy password.Policy

	decoyOnce sync.Once
	decoy     string
}

func NewManager(rm repomanager.RepositoryManager, hasher password.Hasher, policy password.Policy) *Manager {
	return &Manager{rm: rm, hasher: hasher, policy: policy}
}

// Normalize returns the form names and emails are stored and compared in.
func Normalize(s string) string {
	return strings.ToUpper(s)
}

func (m *Manager) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return found(m.rm.Users().GetByNormalizedEmail(ctx, Normalize(email)))
}

func (m *Manager) FindByUsername(ctx context.Context, userName string) (*models.User, error) {
	return found(m.rm.Users().GetByNormalizedUserName(ctx, Normalize(userName)))
}

func (m *Manager) FindByID(ctx context.Context, id string) (*models.User, error) {
	return found(m.rm.Users().GetByID(ctx, id))
}

// found turns a repository lookup into (nil, nil) when nothing matched.
func found(c *models.Credential, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	u := c.User
	return &u, nil
}

// Create validates user and pwd against the policy and stores the account.
// Rejections are reported as violations with a nil error. On success user.ID
// is set.
func (m *Manager) Create(ctx context.Context, user *models.User, pwd string) ([]password.Violation, error) {
	violations := m.policy.CheckUser(user.UserName, user.Email)
	violations = append(violations, m.policy.CheckPassword(pwd)...)
	if len(violations) > 0 {
		return violations, nil
	}

	hash, err := m.hasher.Hash(pwd)
	if errors.Is(err, password.ErrTooLong) {
		return []password.Violation{{
			Code:        password.CodePasswordTooLong,
			Description: fmt.Sprintf("Passwords must be at most %d bytes long.", password.MaxPasswordBytes),
		}}, nil
	}
	if err != nil {
		return nil, err
	}

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	c := &models.Credential{
		User:               *user,
		NormalizedUserName: Normalize(user.UserName),
		NormalizedEmail:    Normalize(user.Email),
		PasswordHash:       hash,
	}
	c.ID = id

	err = m.rm.Users().Create(ctx, c)
	switch {
	case errors.Is(err, users.ErrDuplicateUserName):
		return []password.Violation{{
			Code:        password.CodeDuplicateUserName,
			Description: fmt.Sprintf("Username '%s' is already taken.", user.UserName),
		}}, nil
	case errors.Is(err, users.ErrDuplicateEmail):
		return []password.Violation{{
			Code:        password.CodeDuplicateEmail,
			Description: fmt.Sprintf("Email '%s' is already taken.", user.Email),
		}}, nil
	case err != nil:
		return nil, err
	}

	user.ID = id
	return nil, nil
}

// VerifyPassword reports whether pwd matches the stored hash of user. An
// unknown user is a mismatch.
func (m *Manager) VerifyPassword(ctx context.Context, user *models.User, pwd string) (bool, error) {
	c, err := m.rm.Users().GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			m.verifyDecoy(pwd)
			return false, nil
		}
		return false, err
	}
	return m.hasher.Verify(c.PasswordHash, pwd)
}

// verifyDecoy compares pwd against a throwaway hash, matching the cost of a
// real check.
func (m *Manager) verifyDecoy(pwd string) {
	m.decoyOnce.Do(func() {
		m.decoy, _ = m.hasher.Hash(uuid.NewString())
	})
	if m.decoy != "" {
		_, _ = m.hasher.Verify(m.decoy, pwd)
	}
}

// GetClaims returns the extra claims attached to user.
func (m *Manager) GetClaims(ctx context.Context, user *models.User) ([]auth.Claim, error) {
	stored, err := m.rm.Users().ListClaims(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	claims := make([]auth.Claim, 0, len(stored))
	for _, c := range stored {
		claims = append(claims, auth.Claim{Type: c.Type, Value: c.Value})
	}
	return claims, nil
}

func (m *Manager) RoleExists(ctx context.Context, role string) (bool, error) {
	_, err := m.rm.Roles().GetByNormalizedName(ctx, Normalize(role))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetRoles lists the roles of user in assignment order.
func (m *Manager) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	return m.rm.Roles().ListForUser(ctx, user.ID)
}

func (m *Manager) IsInRole(ctx context.Context, user *models.User, role string) (bool, error) {
	r, err := m.rm.Roles().GetByNormalizedName(ctx, Normalize(role))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.rm.Roles().HasUser(ctx, r.ID, user.ID)
}

// AddToRole adds user to role. It returns ErrRoleNotFound for an unknown role
// and common.ErrorAlreadyExists if the membership already exists.
func (m *Manager) AddToRole(ctx context.Context, user *models.User, role string) error {
	return m.rm.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		r, err := tx.Roles().GetByNormalizedName(ctx, Normalize(role))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		return tx.Roles().AddUser(ctx, r.ID, user.ID)
	})
}
