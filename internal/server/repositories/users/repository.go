package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Uniqueness failures reported by Create. Both match common.ErrorAlreadyExists.
var (
	ErrDuplicateUserName = fmt.Errorf("user name %w", common.ErrorAlreadyExists)
	ErrDuplicateEmail    = fmt.Errorf("email %w", common.ErrorAlreadyExists)
)

// Repository persists user credentials. Lookups by name and email take the
// normalized (upper-cased) form and return common.ErrorNotFound when absent.
type Repository interface {
	Create(ctx context.Context, c *models.Credential) error
	GetByID(ctx context.Context, id string) (*models.Credential, error)
	GetByNormalizedEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByNormalizedUserName(ctx context.Context, userName string) (*models.Credential, error)
	ListClaims(ctx context.Context, userID string) ([]models.UserClaim, error)
}
