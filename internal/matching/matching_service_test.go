package matching

import (
	"context"
	"testing"
	"time"

	"go-fleet/internal/booking"
	"go-fleet/internal/shift"
	"go-fleet/internal/vehicle"

	bookingerrors "go-fleet/internal/booking/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeBookingRepo struct {
	booking.Repository

	holding     []booking.Booking
	driverLoads map[uuid.UUID]int64
}

func (f *fakeBookingRepo) FindResourceHolding(ctx context.Context, start, end time.Time) ([]booking.Booking, error) {
	return f.holding, nil
}

func (f *fakeBookingRepo) CountResourceHoldingByDriverOnDate(ctx context.Context, driverID uuid.UUID, date time.Time) (int64, error) {
	return f.driverLoads[driverID], nil
}

type fakeShiftRepo struct {
	shift.Repository

	shifts []shift.DriverShift
}

func (f *fakeShiftRepo) FindMatchableByDate(ctx context.Context, date time.Time) ([]shift.DriverShift, error) {
	return f.shifts, nil
}

type fakeVehicleRepo struct {
	vehicle.Repository

	vehicles []vehicle.Vehicle
}

func (f *fakeVehicleRepo) FindMatchable(ctx context.Context, minCapacity int, vehicleType *string) ([]vehicle.Vehicle, error) {
	var out []vehicle.Vehicle
	for _, v := range f.vehicles {
		if v.Capacity >= minCapacity {
			out = append(out, v)
		}
	}
	return out, nil
}

func testBooking() *booking.Booking {
	return &booking.Booking{
		ID:             uuid.New(),
		Status:         booking.StatusPending,
		TripDate:       time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartTime:      time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC),
		PassengerCount: 3,
	}
}

func shiftFor(driverID uuid.UUID, from, to int) shift.DriverShift {
	return shift.DriverShift{
		ID:        uuid.New(),
		DriverID:  driverID,
		ShiftDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartTime: time.Date(2025, 3, 12, from, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 12, to, 0, 0, 0, time.UTC),
		Status:    shift.StatusActive,
	}
}

func TestMatchingService_Match(t *testing.T) {
	t.Run("success picks least loaded driver", func(t *testing.T) {
		busyDriver, idleDriver := uuid.New(), uuid.New()
		vehicleID := uuid.New()

		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{busyDriver: 2, idleDriver: 0}},
			&fakeShiftRepo{shifts: []shift.DriverShift{
				shiftFor(busyDriver, 8, 17),
				shiftFor(idleDriver, 8, 17),
			}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: vehicleID, Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		cand, err := svc.Match(context.Background(), testBooking())

		assert.NoError(t, err)
		assert.Equal(t, idleDriver, cand.DriverID)
		assert.Equal(t, vehicleID, cand.VehicleID)
	})

	t.Run("success breaks load tie on lowest driver id", func(t *testing.T) {
		a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
		b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{}},
			&fakeShiftRepo{shifts: []shift.DriverShift{
				shiftFor(b, 8, 17),
				shiftFor(a, 8, 17),
			}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: uuid.New(), Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		cand, err := svc.Match(context.Background(), testBooking())

		assert.NoError(t, err)
		assert.Equal(t, a, cand.DriverID)
	})

	t.Run("skips shifts not covering the window", func(t *testing.T) {
		early, allDay := uuid.New(), uuid.New()

		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{}},
			&fakeShiftRepo{shifts: []shift.DriverShift{
				shiftFor(early, 6, 10),
				shiftFor(allDay, 8, 17),
			}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: uuid.New(), Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		cand, err := svc.Match(context.Background(), testBooking())

		assert.NoError(t, err)
		assert.Equal(t, allDay, cand.DriverID)
	})

	t.Run("skips drivers already holding an overlapping booking", func(t *testing.T) {
		taken, free := uuid.New(), uuid.New()
		takenVehicle := uuid.New()

		svc := NewService(
			&fakeBookingRepo{
				driverLoads: map[uuid.UUID]int64{},
				holding: []booking.Booking{{
					ID:        uuid.New(),
					Status:    booking.StatusConfirmed,
					DriverID:  &taken,
					VehicleID: &takenVehicle,
				}},
			},
			&fakeShiftRepo{shifts: []shift.DriverShift{
				shiftFor(taken, 8, 17),
				shiftFor(free, 8, 17),
			}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: takenVehicle, Capacity: 4, Status: vehicle.StatusAvailable},
				{ID: uuid.New(), Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		cand, err := svc.Match(context.Background(), testBooking())

		assert.NoError(t, err)
		assert.Equal(t, free, cand.DriverID)
		assert.NotEqual(t, takenVehicle, cand.VehicleID)
	})

	t.Run("driver bound vehicle only matches its own driver", func(t *testing.T) {
		driver, otherDriver := uuid.New(), uuid.New()
		boundVehicle, poolVehicle := uuid.New(), uuid.New()

		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{driver: 0, otherDriver: 1}},
			&fakeShiftRepo{shifts: []shift.DriverShift{
				shiftFor(driver, 8, 17),
			}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: boundVehicle, Capacity: 4, Status: vehicle.StatusAvailable, AssignedDriverID: &otherDriver},
				{ID: poolVehicle, Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		cand, err := svc.Match(context.Background(), testBooking())

		assert.NoError(t, err)
		assert.Equal(t, poolVehicle, cand.VehicleID)
	})

	t.Run("falls back to the bound driver when only their vehicle fits", func(t *testing.T) {
		driverA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
		driverB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
		boundVehicle := uuid.New()

		// A wins the tie-break, but the only qualifying vehicle belongs to
		// B: the pair (B, boundVehicle) must still be found.
		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{driverA: 0, driverB: 0}},
			&fakeShiftRepo{shifts: []shift.DriverShift{
				shiftFor(driverA, 8, 17),
				shiftFor(driverB, 8, 17),
			}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: boundVehicle, Capacity: 4, Status: vehicle.StatusAvailable, AssignedDriverID: &driverB},
			}},
		)

		cand, err := svc.Match(context.Background(), testBooking())

		assert.NoError(t, err)
		assert.Equal(t, driverB, cand.DriverID)
		assert.Equal(t, boundVehicle, cand.VehicleID)
	})

	t.Run("negative shift status not matchable", func(t *testing.T) {
		driver := uuid.New()
		done := shiftFor(driver, 8, 17)
		done.Status = shift.StatusCompleted

		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{}},
			&fakeShiftRepo{shifts: []shift.DriverShift{done}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: uuid.New(), Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		_, err := svc.Match(context.Background(), testBooking())

		assert.ErrorIs(t, err, bookingerrors.ErrNoAvailabilityFound)
	})

	t.Run("negative no driver on shift", func(t *testing.T) {
		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{}},
			&fakeShiftRepo{},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: uuid.New(), Capacity: 4, Status: vehicle.StatusAvailable},
			}},
		)

		_, err := svc.Match(context.Background(), testBooking())

		assert.ErrorIs(t, err, bookingerrors.ErrNoAvailabilityFound)
	})

	t.Run("negative no vehicle with enough seats", func(t *testing.T) {
		driver := uuid.New()

		svc := NewService(
			&fakeBookingRepo{driverLoads: map[uuid.UUID]int64{}},
			&fakeShiftRepo{shifts: []shift.DriverShift{shiftFor(driver, 8, 17)}},
			&fakeVehicleRepo{vehicles: []vehicle.Vehicle{
				{ID: uuid.New(), Capacity: 2, Status: vehicle.StatusAvailable},
			}},
		)

		_, err := svc.Match(context.Background(), testBooking())

		assert.ErrorIs(t, err, bookingerrors.ErrNoAvailabilityFound)
	})
}
