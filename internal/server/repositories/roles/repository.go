package roles

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists roles and user membership. Role names are looked up by
// their normalized (upper-cased) form.
type Repository interface {
	GetByNormalizedName(ctx context.Context, name string) (*models.Role, error)
	ListForUser(ctx context.Context, userID string) ([]string, error)
	HasUser(ctx context.Context, roleID int64, userID string) (bool, error)
	// AddUser returns common.ErrorAlreadyExists if the membership exists.
	AddUser(ctx context.Context, roleID int64, userID string) error
}
