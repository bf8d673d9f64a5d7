package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgateway/internal/common"
	"github.com/dmitrijs2005/authgateway/internal/dbx"
	"github.com/dmitrijs2005/authgateway/internal/server/migrations"
	"github.com/dmitrijs2005/authgateway/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, migrations.DirSQLite))

	return NewSQLiteRepository(db), db
}

func newUser(email string) *models.User {
	return &models.User{Email: email, FirstName: "Jo", LastName: "Do", PasswordHash: "hash"}
}

func TestSQLite_InsertAndFind(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	u, err := repo.Insert(ctx, newUser("a@x.com"))
	require.NoError(t, err)
	require.True(t, validID(u.ID))
	require.False(t, u.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(byEmail.CreatedAt))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestSQLite_EmailIsCaseSensitive(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, newUser("A@x.com"))
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "a@x.com")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSQLite_DuplicateEmail(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, newUser("a@x.com"))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, newUser("a@x.com"))
	require.True(t, errors.Is(err, common.ErrorAlreadyExists), "got %v", err)
}

func TestSQLite_NotFound(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "0b6f1d5e-8f3a-4c39-9a47-3c1a2f6b9e10")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = repo.FindByID(ctx, "nope")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	err = repo.UpdatePassword(ctx, "0b6f1d5e-8f3a-4c39-9a47-3c1a2f6b9e10", "h", time.Now())
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestSQLite_UpdatePasswordInTx(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	u, err := repo.Insert(ctx, newUser("a@x.com"))
	require.NoError(t, err)

	later := u.CreatedAt.Add(time.Minute)
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).UpdatePassword(ctx, u.ID, "new-hash", later)
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.True(t, later.Equal(got.UpdatedAt))
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLite_ListAllInInsertOrder(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, e := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		_, err := repo.Insert(ctx, newUser(e))
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c@x.com", all[0].Email)
	assert.Equal(t, "a@x.com", all[1].Email)
	assert.Equal(t, "b@x.com", all[2].Email)
}
