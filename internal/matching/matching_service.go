package matching

import (
	"context"
	"sort"

	"go-fleet/internal/booking"
	"go-fleet/internal/shift"
	"go-fleet/internal/vehicle"

	bookingerrors "go-fleet/internal/booking/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service picks a driver/vehicle pair for a pending booking. Selection is
// pure read-then-rank; the caller owns the atomic reservation step and may
// call Match again when it loses the race.
type Service interface {
	booking.Matcher
}

type service struct {
	bookingRepo booking.Repository
	shiftRepo   shift.Repository
	vehicleRepo vehicle.Repository
	logger      *zap.Logger
}

func NewService(
	bookingRepo booking.Repository,
	shiftRepo shift.Repository,
	vehicleRepo vehicle.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("matching.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("matching.service")
	}
	return &service{
		bookingRepo: bookingRepo,
		shiftRepo:   shiftRepo,
		vehicleRepo: vehicleRepo,
		logger:      l,
	}
}

func (s *service) Match(ctx context.Context, b *booking.Booking) (booking.MatchCandidate, error) {
	s.logger.Debug("match requested",
		zap.String("booking_id", b.ID.String()),
		zap.Time("start_time", b.StartTime),
		zap.Time("end_time", b.EndTime),
		zap.Int("passenger_count", b.PassengerCount),
	)

	busy, err := s.busyResources(ctx, b)
	if err != nil {
		return booking.MatchCandidate{}, err
	}

	drivers, err := s.rankDrivers(ctx, b, busy)
	if err != nil {
		return booking.MatchCandidate{}, err
	}
	if len(drivers) == 0 {
		s.logger.Warn("match no driver available", zap.String("booking_id", b.ID.String()))
		return booking.MatchCandidate{}, bookingerrors.ErrNoAvailabilityFound
	}

	vehicles, err := s.vehicleRepo.FindMatchable(ctx, b.PassengerCount, b.VehicleType)
	if err != nil {
		s.logger.Error("match list vehicles failed", zap.Error(err))
		return booking.MatchCandidate{}, err
	}

	// Kandidat terbaik duluan; kalau dia tidak kebagian kendaraan (misal
	// satu-satunya unit terikat ke driver lain), coba kandidat berikutnya.
	for _, driverID := range drivers {
		vehicleID, found := pickVehicle(vehicles, busy, driverID)
		if !found {
			continue
		}
		s.logger.Info("match found",
			zap.String("booking_id", b.ID.String()),
			zap.String("driver_id", driverID.String()),
			zap.String("vehicle_id", vehicleID.String()),
		)
		return booking.MatchCandidate{DriverID: driverID, VehicleID: vehicleID}, nil
	}

	s.logger.Warn("match no vehicle available", zap.String("booking_id", b.ID.String()))
	return booking.MatchCandidate{}, bookingerrors.ErrNoAvailabilityFound
}

// rankDrivers lists the on-shift drivers able to cover the window, fewest
// resource-holding bookings that day first, lowest driver id on ties.
func (s *service) rankDrivers(ctx context.Context, b *booking.Booking, busy map[uuid.UUID]bool) ([]uuid.UUID, error) {
	shifts, err := s.shiftRepo.FindMatchableByDate(ctx, b.TripDate)
	if err != nil {
		s.logger.Error("match list shifts failed", zap.Error(err))
		return nil, err
	}

	type scored struct {
		driverID uuid.UUID
		load     int64
	}
	seen := make(map[uuid.UUID]bool)
	candidates := make([]scored, 0, len(shifts))
	for _, sh := range shifts {
		if !shift.IsMatchable(sh.Status) {
			continue
		}
		if !sh.Contains(b.StartTime, b.EndTime) {
			continue
		}
		if busy[sh.DriverID] || seen[sh.DriverID] {
			continue
		}
		seen[sh.DriverID] = true

		load, err := s.bookingRepo.CountResourceHoldingByDriverOnDate(ctx, sh.DriverID, b.TripDate)
		if err != nil {
			s.logger.Error("match count driver load failed",
				zap.String("driver_id", sh.DriverID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		candidates = append(candidates, scored{driverID: sh.DriverID, load: load})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].load != candidates[j].load {
			return candidates[i].load < candidates[j].load
		}
		return candidates[i].driverID.String() < candidates[j].driverID.String()
	})

	ranked := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.driverID
	}
	return ranked, nil
}

// pickVehicle returns the least-worn free vehicle with enough seats for the
// given driver. A vehicle bound to a specific driver is only eligible for
// that driver.
func pickVehicle(vehicles []vehicle.Vehicle, busy map[uuid.UUID]bool, driverID uuid.UUID) (uuid.UUID, bool) {
	for _, v := range vehicles {
		if busy[v.ID] {
			continue
		}
		if v.AssignedDriverID != nil && *v.AssignedDriverID != driverID {
			continue
		}
		return v.ID, true
	}
	return uuid.Nil, false
}

// busyResources collects driver and vehicle ids held by bookings whose
// windows overlap the requested one.
func (s *service) busyResources(ctx context.Context, b *booking.Booking) (map[uuid.UUID]bool, error) {
	holding, err := s.bookingRepo.FindResourceHolding(ctx, b.StartTime, b.EndTime)
	if err != nil {
		s.logger.Error("match list holding bookings failed", zap.Error(err))
		return nil, err
	}
	busy := make(map[uuid.UUID]bool, len(holding)*2)
	for _, other := range holding {
		if other.ID == b.ID {
			continue
		}
		if other.DriverID != nil {
			busy[*other.DriverID] = true
		}
		if other.VehicleID != nil {
			busy[*other.VehicleID] = true
		}
	}
	return busy, nil
}
