package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectCredential = `SELECT id, user_name, normalized_user_name, email, normalized_email,
		first_name, last_name, password_hash, created_at
		 FROM users
		 `

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) error {

	query :=
		`INSERT INTO users (id, user_name, normalized_user_name, email, normalized_email,
		 first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.UserName, c.NormalizedUserName, c.Email, c.NormalizedEmail,
		c.FirstName, c.LastName, c.PasswordHash).Scan(&c.CreatedAt)

	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			switch constraint {
			case "users_normalized_email_key":
				return ErrDuplicateEmail
			case "users_normalized_user_name_key":
				return ErrDuplicateUserName
			}
			return fmt.Errorf("db error: %w", common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	return r.getOne(ctx, selectCredential+`WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByNormalizedEmail(ctx context.Context, email string) (*models.Credential, error) {
	return r.getOne(ctx, selectCredential+`WHERE normalized_email = $1`, email)
}

func (r *PostgresRepository) GetByNormalizedUserName(ctx context.Context, userName string) (*models.Credential, error) {
	return r.getOne(ctx, selectCredential+`WHERE normalized_user_name = $1`, userName)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Credential, error) {
	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.UserName, &c.NormalizedUserName, &c.Email, &c.NormalizedEmail,
		&c.FirstName, &c.LastName, &c.PasswordHash, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) ListClaims(ctx context.Context, userID string) ([]models.UserClaim, error) {
	query :=
		`SELECT claim_type, claim_value FROM user_claims
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var claims []models.UserClaim
	for rows.Next() {
		var c models.UserClaim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return claims, nil
}
