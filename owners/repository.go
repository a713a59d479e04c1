package owners

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/axdbertuol/carford/cars"
	"github.com/axdbertuol/carford/db"
)

// ErrNotFound is returned when no owner has the requested id.
var ErrNotFound = errors.New("owner not found")

// CarLister is the part of the car repository owners need for nested cars.
type CarLister interface {
	List(ctx context.Context, q db.DBTX) ([]cars.Car, error)
	ListByOwner(ctx context.Context, q db.DBTX, ownerID int64) ([]cars.Car, error)
	DeleteByOwner(ctx context.Context, q db.DBTX, ownerID int64) (int64, error)
}

// Repository runs owner queries on the handle it is given.
type Repository struct {
	cars CarLister
}

// NewRepository creates an owner repository that loads cars through carRepo.
func NewRepository(carRepo CarLister) *Repository {
	return &Repository{cars: carRepo}
}

// Create inserts an owner with no cars.
func (r *Repository) Create(ctx context.Context, q db.DBTX, name string, saleOpportunity bool) (*Owner, error) {
	const query = `
		INSERT INTO owners (name, sale_opportunity)
		VALUES ($1, $2)
		RETURNING id, name, sale_opportunity`

	var o Owner
	if err := q.GetContext(ctx, &o, query, name, saleOpportunity); err != nil {
		return nil, fmt.Errorf("insert owner: %w", err)
	}
	o.Cars = []cars.Car{}
	return &o, nil
}

// List returns every owner with its cars, ordered by id.
func (r *Repository) List(ctx context.Context, q db.DBTX) ([]Owner, error) {
	owners := []Owner{}
	if err := q.SelectContext(ctx, &owners, `SELECT id, name, sale_opportunity FROM owners ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}

	allCars, err := r.cars.List(ctx, q)
	if err != nil {
		return nil, err
	}
	byOwner := make(map[int64][]cars.Car, len(owners))
	for _, c := range allCars {
		byOwner[c.OwnerID] = append(byOwner[c.OwnerID], c)
	}
	for i := range owners {
		owners[i].Cars = byOwner[owners[i].ID]
		if owners[i].Cars == nil {
			owners[i].Cars = []cars.Car{}
		}
	}
	return owners, nil
}

// Get returns one owner with its cars.
func (r *Repository) Get(ctx context.Context, q db.DBTX, id int64) (*Owner, error) {
	var o Owner
	err := q.GetContext(ctx, &o, `SELECT id, name, sale_opportunity FROM owners WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get owner %d: %w", id, err)
	}

	if o.Cars, err = r.cars.ListByOwner(ctx, q, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update sets the owner's name and, when saleOpportunity is non-nil, its sale flag.
func (r *Repository) Update(ctx context.Context, q db.DBTX, id int64, name string, saleOpportunity *bool) (*Owner, error) {
	const query = `
		UPDATE owners
		SET name = $2, sale_opportunity = COALESCE($3::boolean, sale_opportunity)
		WHERE id = $1
		RETURNING id, name, sale_opportunity`

	var o Owner
	err := q.GetContext(ctx, &o, query, id, name, saleOpportunity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update owner %d: %w", id, err)
	}

	if o.Cars, err = r.cars.ListByOwner(ctx, q, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// Delete removes an owner together with its cars. It must run in a transaction.
func (r *Repository) Delete(ctx context.Context, q db.DBTX, id int64) error {
	var locked int64
	err := q.GetContext(ctx, &locked, `SELECT id FROM owners WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock owner %d: %w", id, err)
	}

	if _, err := r.cars.DeleteByOwner(ctx, q, id); err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM owners WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete owner %d: %w", id, err)
	}
	return nil
}
