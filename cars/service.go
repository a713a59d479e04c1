package cars

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/db"
)

const (
	msgCarNotFound   = "Car not found"
	msgOwnerNotFound = "Owner not found"
)

var msgCarLimit = fmt.Sprintf("An owner cannot have more than %d cars", MaxPerOwner)

// Store is the car persistence the service depends on.
type Store interface {
	Create(ctx context.Context, q db.DBTX, ownerID int64, color, model string) (*Car, error)
	List(ctx context.Context, q db.DBTX) ([]Car, error)
	Get(ctx context.Context, q db.DBTX, id int64) (*Car, error)
	Update(ctx context.Context, q db.DBTX, id, ownerID int64, color, model string) (*Car, error)
	Delete(ctx context.Context, q db.DBTX, id int64) error
}

// Service runs every car write in its own transaction.
type Service struct {
	conn   *sqlx.DB
	store  Store
	logger *zap.Logger
}

// NewService creates the car service.
func NewService(conn *sqlx.DB, store Store, logger *zap.Logger) *Service {
	return &Service{conn: conn, store: store, logger: logger}
}

// Create adds a car to an owner that has fewer than MaxPerOwner cars.
func (s *Service) Create(ctx context.Context, req CarRequest) (*Car, error) {
	var car *Car
	err := db.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		car, err = s.store.Create(ctx, tx, req.OwnerID, req.Color, req.Model)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to create car")
	}
	s.logger.Debug("car created", zap.Int64("car_id", car.ID), zap.Int64("owner_id", car.OwnerID))
	return car, nil
}

// List returns all cars.
func (s *Service) List(ctx context.Context) ([]Car, error) {
	cars, err := s.store.List(ctx, s.conn)
	if err != nil {
		return nil, s.translate(err, "failed to list cars")
	}
	return cars, nil
}

// Get returns one car.
func (s *Service) Get(ctx context.Context, id int64) (*Car, error) {
	car, err := s.store.Get(ctx, s.conn, id)
	if err != nil {
		return nil, s.translate(err, "failed to get car")
	}
	return car, nil
}

// Update replaces a car's fields, re-checking the limit when it changes owner.
func (s *Service) Update(ctx context.Context, id int64, req CarRequest) (*Car, error) {
	var car *Car
	err := db.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		car, err = s.store.Update(ctx, tx, id, req.OwnerID, req.Color, req.Model)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to update car")
	}
	return car, nil
}

// Delete removes a car.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := db.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.store.Delete(ctx, tx, id)
	})
	if err != nil {
		return s.translate(err, "failed to delete car")
	}
	return nil
}

func (s *Service) translate(err error, internalMsg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.NewNotFoundError(msgCarNotFound, err)
	case errors.Is(err, ErrOwnerNotFound):
		return apperror.NewNotFoundError(msgOwnerNotFound, err)
	case errors.Is(err, ErrCarLimitExceeded):
		return apperror.NewCarLimitError(msgCarLimit, err)
	default:
		return apperror.NewDatabaseError(internalMsg, err)
	}
}
