package vehicle

import (
	"context"
	"database/sql"
	"testing"

	vehicleerrors "go-fleet/internal/vehicle/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	vehicles  map[uuid.UUID]*Vehicle
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{vehicles: make(map[uuid.UUID]*Vehicle)}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, v *Vehicle) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *v
	f.vehicles[v.ID] = &cp
	return nil
}
func (f *fakeRepo) FindAll(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	for _, v := range f.vehicles {
		out = append(out, *v)
	}
	return out, nil
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	v, ok := f.vehicles[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}
func (f *fakeRepo) FindMatchable(ctx context.Context, minCapacity int, vehicleType *string) ([]Vehicle, error) {
	return nil, nil
}
func (f *fakeRepo) Update(ctx context.Context, v *Vehicle) error {
	cp := *v
	f.vehicles[v.ID] = &cp
	return nil
}

func TestVehicleService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo)

		resp, err := svc.Create(context.Background(), CreateVehicleRequest{
			PlateNumber: "B 1234 XY",
			VehicleType: "MPV",
			Capacity:    6,
			OdometerKm:  12000,
		})

		assert.NoError(t, err)
		assert.Equal(t, StatusAvailable, resp.Status)
		assert.Equal(t, 6, resp.Capacity)
		assert.Len(t, repo.vehicles, 1)
	})

	t.Run("negative duplicate plate", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "uq_vehicle_plate"}
		svc := NewService(nil, repo)

		_, err := svc.Create(context.Background(), CreateVehicleRequest{
			PlateNumber: "B 1234 XY",
			VehicleType: "MPV",
			Capacity:    6,
		})

		assert.ErrorIs(t, err, vehicleerrors.ErrPlateAlreadyExists)
	})

	t.Run("negative invalid capacity", func(t *testing.T) {
		svc := NewService(nil, newFakeRepo())

		_, err := svc.Create(context.Background(), CreateVehicleRequest{
			PlateNumber: "B 1234 XY",
			VehicleType: "MPV",
			Capacity:    0,
		})

		assert.ErrorIs(t, err, vehicleerrors.ErrInvalidCapacity)
	})
}

func TestVehicleService_SetStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		v := &Vehicle{ID: uuid.New(), PlateNumber: "B 1 A", Capacity: 4, Status: StatusAvailable}
		repo.vehicles[v.ID] = v
		svc := NewService(nil, repo)

		resp, err := svc.SetStatus(context.Background(), v.ID.String(), SetVehicleStatusRequest{Status: StatusMaintenance})

		assert.NoError(t, err)
		assert.Equal(t, StatusMaintenance, resp.Status)
		assert.Equal(t, StatusMaintenance, repo.vehicles[v.ID].Status)
	})

	t.Run("negative unknown status", func(t *testing.T) {
		repo := newFakeRepo()
		v := &Vehicle{ID: uuid.New(), Status: StatusAvailable}
		repo.vehicles[v.ID] = v
		svc := NewService(nil, repo)

		_, err := svc.SetStatus(context.Background(), v.ID.String(), SetVehicleStatusRequest{Status: "PARKED"})

		assert.ErrorIs(t, err, vehicleerrors.ErrInvalidStatus)
	})

	t.Run("negative missing vehicle", func(t *testing.T) {
		svc := NewService(nil, newFakeRepo())

		_, err := svc.SetStatus(context.Background(), uuid.New().String(), SetVehicleStatusRequest{Status: StatusInactive})

		assert.ErrorIs(t, err, vehicleerrors.ErrVehicleNotFound)
	})
}

func TestVehicleService_GetByID(t *testing.T) {
	repo := newFakeRepo()
	driverID := uuid.New()
	v := &Vehicle{ID: uuid.New(), PlateNumber: "B 2 B", Capacity: 4, Status: StatusAvailable, AssignedDriverID: &driverID}
	repo.vehicles[v.ID] = v
	svc := NewService(nil, repo)

	resp, err := svc.GetByID(context.Background(), v.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, driverID.String(), *resp.AssignedDriverID)

	_, err = svc.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, vehicleerrors.ErrInvalidVehicleID)
}
