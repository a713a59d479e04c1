package cars

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var carCols = []string{"id", "owner_id", "color", "model"}

const (
	lockOwnerSQL = "SELECT id FROM owners WHERE id = $1 FOR UPDATE"
	countSQL     = "SELECT COUNT(*) FROM cars WHERE owner_id = $1"
	lockCarSQL   = "SELECT owner_id FROM cars WHERE id = $1 FOR UPDATE"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func expectSlot(mock sqlmock.Sqlmock, ownerID int64, count int) {
	mock.ExpectQuery(regexp.QuoteMeta(lockOwnerSQL)).WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(ownerID))
	mock.ExpectQuery(regexp.QuoteMeta(countSQL)).WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestRepository_Create(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	expectSlot(mock, 1, 2)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO cars (owner_id, color, model)")).
		WithArgs(int64(1), "blue", "sedan").
		WillReturnRows(sqlmock.NewRows(carCols).AddRow(10, 1, "blue", "sedan"))

	car, err := repo.Create(context.Background(), conn, 1, "blue", "sedan")
	require.NoError(t, err)
	assert.Equal(t, &Car{ID: 10, OwnerID: 1, Color: "blue", Model: "sedan"}, car)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_LimitReached(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	expectSlot(mock, 1, MaxPerOwner)

	_, err := repo.Create(context.Background(), conn, 1, "blue", "sedan")
	assert.ErrorIs(t, err, ErrCarLimitExceeded)
	assert.NoError(t, mock.ExpectationsWereMet(), "no insert after the limit check fails")
}

func TestRepository_Create_OwnerMissing(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta(lockOwnerSQL)).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Create(context.Background(), conn, 99, "blue", "sedan")
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestRepository_Create_TriggerViolation(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	expectSlot(mock, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO cars")).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "owner 1 already has 3 cars"})

	_, err := repo.Create(context.Background(), conn, 1, "gray", "hatch")
	assert.ErrorIs(t, err, ErrCarLimitExceeded)
}

func TestRepository_Update_SameOwnerSkipsLimit(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta(lockCarSQL)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE cars")).
		WithArgs(int64(5), int64(1), "yellow", "convertible").
		WillReturnRows(sqlmock.NewRows(carCols).AddRow(5, 1, "yellow", "convertible"))

	car, err := repo.Update(context.Background(), conn, 5, 1, "yellow", "convertible")
	require.NoError(t, err)
	assert.Equal(t, "convertible", car.Model)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_MoveToFullOwner(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta(lockCarSQL)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	expectSlot(mock, 2, MaxPerOwner)

	_, err := repo.Update(context.Background(), conn, 5, 2, "yellow", "hatch")
	assert.ErrorIs(t, err, ErrCarLimitExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_NotFound(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta(lockCarSQL)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}))

	_, err := repo.Update(context.Background(), conn, 5, 1, "yellow", "hatch")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Get(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cars WHERE id = $1")).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(carCols))

	_, err := repo.Get(context.Background(), conn, 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_List(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cars ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(carCols))

	cars, err := repo.List(context.Background(), conn)
	require.NoError(t, err)
	assert.NotNil(t, cars)
	assert.Empty(t, cars)
}

func TestRepository_Delete(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewRepository()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cars WHERE id = $1")).WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cars WHERE id = $1")).WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), conn, 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), conn, 3), ErrNotFound)
}
