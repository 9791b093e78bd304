package sqltransport_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restbound/restbound/relation"
	"github.com/restbound/restbound/transport/sqltransport"
)

func setupTestDB(t *testing.T) (sqlmock.Sqlmock, *sqltransport.Store) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, sqltransport.New(db)
}

func TestFetchResource(t *testing.T) {
	mock, store := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM blog_posts WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "title"}).
				AddRow(7, []byte("hello")),
		)

	record, err := store.FetchResource(context.Background(), "BlogPost",
		relation.NewIdentity(map[string]any{"id": 7}))
	require.NoError(t, err)

	assert.Equal(t, "hello", record["title"]) // []byte converted to string
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchResourceNotFound(t *testing.T) {
	mock, store := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FetchResource(context.Background(), "User",
		relation.NewIdentity(map[string]any{"id": 99}))
	assert.ErrorIs(t, err, sqltransport.ErrNotFound)
}

func TestFetchResourceWithoutID(t *testing.T) {
	_, store := setupTestDB(t)

	_, err := store.FetchResource(context.Background(), "User",
		relation.NewIdentity(map[string]any{"name": "alice"}))
	assert.ErrorIs(t, err, sqltransport.ErrMissingID)
}

func TestFetchCollection(t *testing.T) {
	mock, store := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM posts WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "user_id", "title"}).
				AddRow(10, 1, "a").
				AddRow(11, 1, "b"),
		)

	records, err := store.FetchCollection(context.Background(), "User",
		relation.NewIdentity(map[string]any{"id": 1}), "posts")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchCollectionEmpty(t *testing.T) {
	mock, store := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM posts WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title"}))

	records, err := store.FetchCollection(context.Background(), "User",
		relation.NewIdentity(map[string]any{"id": 1}), "posts")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := sqltransport.New(db, sqltransport.WithDialect(sqltransport.DialectSQLite))

	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err = store.FetchResource(context.Background(), "User",
		relation.NewIdentity(map[string]any{"id": 1}))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
