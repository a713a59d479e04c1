package cars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/axdbertuol/carford/db"
)

var (
	ErrNotFound         = errors.New("car not found")
	ErrOwnerNotFound    = errors.New("owner not found")
	ErrCarLimitExceeded = errors.New("owner car limit exceeded")
)

const carColumns = `id, owner_id, color::text AS color, model::text AS model`

// Repository runs car queries on whatever handle it is given. Writes that
// assign an owner must run inside a transaction so the owner row lock holds
// until commit.
type Repository struct{}

// NewRepository creates a car repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Create inserts a car after checking the owner still has room for it.
func (r *Repository) Create(ctx context.Context, q db.DBTX, ownerID int64, color, model string) (*Car, error) {
	if err := r.reserveSlot(ctx, q, ownerID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO cars (owner_id, color, model)
		VALUES ($1, $2::car_color, $3::car_model)
		RETURNING ` + carColumns

	var c Car
	if err := q.GetContext(ctx, &c, query, ownerID, color, model); err != nil {
		return nil, mapWriteError("insert car", err)
	}
	return &c, nil
}

// List returns every car ordered by id.
func (r *Repository) List(ctx context.Context, q db.DBTX) ([]Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY id`

	cars := []Car{}
	if err := q.SelectContext(ctx, &cars, query); err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return cars, nil
}

// ListByOwner returns the cars of one owner ordered by id.
func (r *Repository) ListByOwner(ctx context.Context, q db.DBTX, ownerID int64) ([]Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE owner_id = $1 ORDER BY id`

	cars := []Car{}
	if err := q.SelectContext(ctx, &cars, query, ownerID); err != nil {
		return nil, fmt.Errorf("list cars of owner %d: %w", ownerID, err)
	}
	return cars, nil
}

// Get returns a single car.
func (r *Repository) Get(ctx context.Context, q db.DBTX, id int64) (*Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	var c Car
	if err := q.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get car %d: %w", id, err)
	}
	return &c, nil
}

// Update changes a car. Moving it to another owner re-checks that owner's limit;
// the car itself is not yet counted there.
func (r *Repository) Update(ctx context.Context, q db.DBTX, id, ownerID int64, color, model string) (*Car, error) {
	var currentOwner int64
	err := q.GetContext(ctx, &currentOwner, `SELECT owner_id FROM cars WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock car %d: %w", id, err)
	}

	if ownerID != currentOwner {
		if err := r.reserveSlot(ctx, q, ownerID); err != nil {
			return nil, err
		}
	}

	query := `
		UPDATE cars
		SET owner_id = $2, color = $3::car_color, model = $4::car_model
		WHERE id = $1
		RETURNING ` + carColumns

	var c Car
	if err := q.GetContext(ctx, &c, query, id, ownerID, color, model); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapWriteError("update car", err)
	}
	return &c, nil
}

// Delete removes a car.
func (r *Repository) Delete(ctx context.Context, q db.DBTX, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete car %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete car %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes all cars of an owner and returns how many went.
func (r *Repository) DeleteByOwner(ctx context.Context, q db.DBTX, ownerID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM cars WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete cars of owner %d: %w", ownerID, err)
	}
	return res.RowsAffected()
}

// reserveSlot locks the owner row and fails when the owner is missing or full.
// Concurrent writers for the same owner queue on the lock, so the count they
// see includes every committed insert before them.
func (r *Repository) reserveSlot(ctx context.Context, q db.DBTX, ownerID int64) error {
	var locked int64
	err := q.GetContext(ctx, &locked, `SELECT id FROM owners WHERE id = $1 FOR UPDATE`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("lock owner %d: %w", ownerID, err)
	}

	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM cars WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("count cars of owner %d: %w", ownerID, err)
	}
	if count >= MaxPerOwner {
		return ErrCarLimitExceeded
	}
	return nil
}

func mapWriteError(op string, err error) error {
	switch {
	case db.IsCheckViolation(err):
		return ErrCarLimitExceeded
	case db.IsForeignKeyViolation(err):
		return ErrOwnerNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
