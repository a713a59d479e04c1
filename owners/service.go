package owners

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/db"
)

const msgOwnerNotFound = "Owner not found"

// Reads see owners and their cars from one snapshot.
var readOnly = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Store is the owner persistence the service depends on.
type Store interface {
	Create(ctx context.Context, q db.DBTX, name string, saleOpportunity bool) (*Owner, error)
	List(ctx context.Context, q db.DBTX) ([]Owner, error)
	Get(ctx context.Context, q db.DBTX, id int64) (*Owner, error)
	Update(ctx context.Context, q db.DBTX, id int64, name string, saleOpportunity *bool) (*Owner, error)
	Delete(ctx context.Context, q db.DBTX, id int64) error
}

// Service wraps each owner operation in one transaction.
type Service struct {
	conn   *sqlx.DB
	store  Store
	logger *zap.Logger
}

// NewService creates the owner service.
func NewService(conn *sqlx.DB, store Store, logger *zap.Logger) *Service {
	return &Service{conn: conn, store: store, logger: logger}
}

// Create inserts an owner; sale_opportunity defaults to true.
func (s *Service) Create(ctx context.Context, req OwnerRequest) (*Owner, error) {
	sale := true
	if req.SaleOpportunity != nil {
		sale = *req.SaleOpportunity
	}

	var owner *Owner
	err := db.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		owner, err = s.store.Create(ctx, tx, req.Name, sale)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to create owner")
	}
	return owner, nil
}

// List returns every owner with its cars.
func (s *Service) List(ctx context.Context) ([]Owner, error) {
	var owners []Owner
	err := db.WithTx(ctx, s.conn, readOnly, func(ctx context.Context, tx db.DBTX) error {
		var err error
		owners, err = s.store.List(ctx, tx)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to list owners")
	}
	return owners, nil
}

// Get returns one owner with its cars.
func (s *Service) Get(ctx context.Context, id int64) (*Owner, error) {
	var owner *Owner
	err := db.WithTx(ctx, s.conn, readOnly, func(ctx context.Context, tx db.DBTX) error {
		var err error
		owner, err = s.store.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to get owner")
	}
	return owner, nil
}

// Update renames an owner and, when given, sets its sale flag.
func (s *Service) Update(ctx context.Context, id int64, req OwnerRequest) (*Owner, error) {
	var owner *Owner
	err := db.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		owner, err = s.store.Update(ctx, tx, id, req.Name, req.SaleOpportunity)
		return err
	})
	if err != nil {
		return nil, s.translate(err, "failed to update owner")
	}
	return owner, nil
}

// Delete removes the owner and every car it holds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := db.WithTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.store.Delete(ctx, tx, id)
	})
	if err != nil {
		return s.translate(err, "failed to delete owner")
	}
	s.logger.Info("owner deleted", zap.Int64("owner_id", id))
	return nil
}

func (s *Service) translate(err error, internalMsg string) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NewNotFoundError(msgOwnerNotFound, err)
	}
	return apperror.NewDatabaseError(internalMsg, err)
}
