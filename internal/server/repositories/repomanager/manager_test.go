package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
	_ RepositoryManager = (*InMemoryRepositoryManager)(nil)
)

func newMockManager(t *testing.T) (*PostgresRepositoryManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepositoryManagerFromDB(db), mock
}

func TestPostgres_Factories(t *testing.T) {
	m, _ := newMockManager(t)
	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.Roles())
}

func TestPostgres_WithTx_Commit(t *testing.T) {
	m, mock := newMockManager(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+user_roles`).WithArgs("u-1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return tx.Roles().AddUser(ctx, 2, "u-1")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WithTx_RollbackOnError(t *testing.T) {
	m, mock := newMockManager(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := m.WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_WithTx_Nested(t *testing.T) {
	m, mock := newMockManager(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := m.WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return tx.WithTx(ctx, func(ctx context.Context, inner RepositoryManager) error {
			assert.Same(t, tx, inner)
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, (&PostgresRepositoryManager{}).Close())
}

func TestRunMigrations_Success(t *testing.T) {
	m, _ := newMockManager(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	require.NoError(t, m.RunMigrations(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	m, _ := newMockManager(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	assert.EqualError(t, m.RunMigrations(context.Background()), "boom")
}

func TestRunMigrations_InsideTx(t *testing.T) {
	m := &PostgresRepositoryManager{}
	assert.Error(t, m.RunMigrations(context.Background()))
}

func TestInMemory_SharesStoreAcrossTx(t *testing.T) {
	m := NewInMemoryRepositoryManager(nil)
	ctx := context.Background()

	c := &models.Credential{
		User:               models.User{ID: "u-1", UserName: "alice", Email: "a@x"},
		NormalizedUserName: "ALICE",
		NormalizedEmail:    "A@X",
	}
	err := m.WithTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		return tx.WithTx(ctx, func(ctx context.Context, inner RepositoryManager) error {
			return inner.Users().Create(ctx, c)
		})
	})
	require.NoError(t, err)

	got, err := m.Users().GetByNormalizedUserName(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	assert.NoError(t, m.RunMigrations(ctx))
	assert.NoError(t, m.Close())
	assert.NotNil(t, m.Store())
}
