package cars

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/db"
)

type fakeStore struct {
	createErr error
	updateErr error
	deleteErr error
	getErr    error
	called    bool
}

func (f *fakeStore) Create(_ context.Context, _ db.DBTX, ownerID int64, color, model string) (*Car, error) {
	f.called = true
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &Car{ID: 1, OwnerID: ownerID, Color: color, Model: model}, nil
}

func (f *fakeStore) List(context.Context, db.DBTX) ([]Car, error) { return []Car{}, nil }

func (f *fakeStore) Get(_ context.Context, _ db.DBTX, id int64) (*Car, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &Car{ID: id, OwnerID: 1, Color: ColorGray, Model: ModelHatch}, nil
}

func (f *fakeStore) Update(_ context.Context, _ db.DBTX, id, ownerID int64, color, model string) (*Car, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &Car{ID: id, OwnerID: ownerID, Color: color, Model: model}, nil
}

func (f *fakeStore) Delete(context.Context, db.DBTX, int64) error { return f.deleteErr }

var validReq = CarRequest{OwnerID: 1, Color: ColorBlue, Model: ModelSedan}

func TestService_Create_Commits(t *testing.T) {
	conn, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewService(conn, &fakeStore{}, zap.NewNop())
	car, err := svc.Create(context.Background(), validReq)

	require.NoError(t, err)
	assert.Equal(t, int64(1), car.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ErrorTranslation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"limit", ErrCarLimitExceeded, http.StatusBadRequest, "An owner cannot have more than 3 cars"},
		{"owner missing", ErrOwnerNotFound, http.StatusNotFound, "Owner not found"},
		{"car missing", ErrNotFound, http.StatusNotFound, "Car not found"},
		{"driver failure", errors.New("conn refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()

			svc := NewService(conn, &fakeStore{updateErr: tt.err}, zap.NewNop())
			_, err := svc.Update(context.Background(), 5, validReq)

			appErr := apperror.FromError(err)
			assert.Equal(t, tt.status, appErr.StatusCode())
			assert.Equal(t, tt.msg, appErr.ToResponse().Msg)
			assert.NoError(t, mock.ExpectationsWereMet(), "transaction rolled back")
		})
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	conn, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewService(conn, &fakeStore{deleteErr: ErrNotFound}, zap.NewNop())
	err := svc.Delete(context.Background(), 3)

	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Get_NoTransaction(t *testing.T) {
	conn, mock := newMockDB(t)

	svc := NewService(conn, &fakeStore{getErr: ErrNotFound}, zap.NewNop())
	_, err := svc.Get(context.Background(), 3)

	assert.True(t, apperror.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
