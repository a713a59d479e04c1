package cars

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/db"
)

// openTestDB connects to the database named by CARFORD_TEST_DATABASE_URL and
// migrates it, or skips the test when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("CARFORD_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CARFORD_TEST_DATABASE_URL not set")
	}
	require.NoError(t, db.RunMigrations(dsn, db.Up))

	conn, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func seedOwner(t *testing.T, conn *sqlx.DB, existingCars int) int64 {
	t.Helper()
	ctx := context.Background()

	var ownerID int64
	require.NoError(t, conn.GetContext(ctx, &ownerID, `INSERT INTO owners (name) VALUES ($1) RETURNING id`, "concurrency "+t.Name()))
	t.Cleanup(func() { _, _ = conn.ExecContext(context.Background(), `DELETE FROM owners WHERE id = $1`, ownerID) })

	for i := 0; i < existingCars; i++ {
		_, err := conn.ExecContext(ctx, `INSERT INTO cars (owner_id, color, model) VALUES ($1, 'gray', 'hatch')`, ownerID)
		require.NoError(t, err)
	}
	return ownerID
}

func TestConcurrentCreate_NeverExceedsLimit(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, NewRepository(), zap.NewNop())

	for _, tc := range []struct{ existing, attempts int }{
		{0, 10},
		{1, 5},
		{2, 2},
		{3, 4},
		{0, 2},
	} {
		t.Run(fmt.Sprintf("k=%d_n=%d", tc.existing, tc.attempts), func(t *testing.T) {
			ownerID := seedOwner(t, conn, tc.existing)

			var created, rejected atomic.Int32
			var g errgroup.Group
			for i := 0; i < tc.attempts; i++ {
				g.Go(func() error {
					_, err := svc.Create(context.Background(), CarRequest{OwnerID: ownerID, Color: ColorBlue, Model: ModelSedan})
					switch {
					case err == nil:
						created.Add(1)
					case apperror.IsCarLimitError(err):
						rejected.Add(1)
					default:
						return err
					}
					return nil
				})
			}
			require.NoError(t, g.Wait())

			want := min(tc.attempts, MaxPerOwner-tc.existing)
			assert.EqualValues(t, want, created.Load())
			assert.EqualValues(t, tc.attempts-want, rejected.Load())

			var total int
			require.NoError(t, conn.GetContext(context.Background(), &total, `SELECT COUNT(*) FROM cars WHERE owner_id = $1`, ownerID))
			assert.Equal(t, tc.existing+want, total)
		})
	}
}

func TestTriggerRejectsDirectInsert(t *testing.T) {
	conn := openTestDB(t)
	ownerID := seedOwner(t, conn, MaxPerOwner)

	_, err := conn.ExecContext(context.Background(), `INSERT INTO cars (owner_id, color, model) VALUES ($1, 'blue', 'sedan')`, ownerID)

	require.Error(t, err)
	assert.True(t, db.IsCheckViolation(err))
}

func TestUpdate_MoveCarBetweenOwners(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn, NewRepository(), zap.NewNop())
	full := seedOwner(t, conn, MaxPerOwner)
	empty := seedOwner(t, conn, 0)

	car, err := svc.Create(context.Background(), CarRequest{OwnerID: empty, Color: ColorYellow, Model: ModelHatch})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), car.ID, CarRequest{OwnerID: full, Color: ColorYellow, Model: ModelHatch})
	assert.True(t, apperror.IsCarLimitError(err))

	moved, err := svc.Update(context.Background(), car.ID, CarRequest{OwnerID: empty, Color: ColorBlue, Model: ModelConvertible})
	require.NoError(t, err)
	assert.Equal(t, ColorBlue, moved.Color)
}
