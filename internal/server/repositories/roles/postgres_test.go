package roles

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetByNormalizedName(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^SELECT\s+id,\s*name\s+FROM\s+roles\s+WHERE\s+normalized_name\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).WithArgs("ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(2), "Admin"))

	got, err := repo.GetByNormalizedName(context.Background(), "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, &models.Role{ID: 2, Name: "Admin"}, got)
}

func TestGetByNormalizedName_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+roles`).WithArgs("GHOST").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByNormalizedName(context.Background(), "GHOST")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListForUser_KeepsAssignmentOrder(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^SELECT\s+r\.name\s+FROM\s+user_roles\s+ur\s+JOIN\s+roles\s+r.*ORDER\s+BY\s+ur\.assigned_at,\s*r\.id\s*$`

	mock.ExpectQuery(q).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("User").AddRow("Admin"))

	got, err := repo.ListForUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Admin"}, got)
}

func TestListForUser_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+user_roles`).WillReturnError(errors.New("db err"))

	_, err := repo.ListForUser(context.Background(), "u-1")
	assert.Error(t, err)
}

func TestHasUser(t *testing.T) {
	for _, exists := range []bool{true, false} {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`SELECT\s+EXISTS`).WithArgs(int64(1), "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))

		got, err := repo.HasUser(context.Background(), 1, "u-1")
		require.NoError(t, err)
		assert.Equal(t, exists, got)
	}
}

func TestAddUser(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+user_roles\s*\(user_id,\s*role_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*$`

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs("u-1", int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.AddUser(context.Background(), 2, "u-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "user_roles_pkey"})

		assert.ErrorIs(t, repo.AddUser(context.Background(), 2, "u-1"), common.ErrorAlreadyExists)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("timeout"))

		err := repo.AddUser(context.Background(), 2, "u-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
	})
}
