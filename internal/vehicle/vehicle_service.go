package vehicle

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	vehicleerrors "go-fleet/internal/vehicle/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=vehicle_service.go -destination=mock/vehicle_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateVehicleRequest) (VehicleResponse, error)
	GetAll(ctx context.Context) ([]VehicleResponse, error)
	GetByID(ctx context.Context, id string) (VehicleResponse, error)
	SetStatus(ctx context.Context, id string, req SetVehicleStatusRequest) (VehicleResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("vehicle.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("vehicle.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateVehicleRequest) (VehicleResponse, error) {
	s.logger.Debug("create vehicle requested",
		zap.String("plate_number", req.PlateNumber),
		zap.String("vehicle_type", req.VehicleType),
	)

	if req.Capacity < 1 {
		return VehicleResponse{}, vehicleerrors.ErrInvalidCapacity
	}

	v := &Vehicle{
		ID:          uuid.New(),
		PlateNumber: req.PlateNumber,
		VehicleType: req.VehicleType,
		Capacity:    req.Capacity,
		OdometerKm:  req.OdometerKm,
		Status:      StatusAvailable,
	}
	if req.AssignedDriverID != nil && *req.AssignedDriverID != "" {
		driverID, err := uuid.Parse(*req.AssignedDriverID)
		if err != nil {
			return VehicleResponse{}, vehicleerrors.ErrInvalidVehicleID
		}
		v.AssignedDriverID = &driverID
	}

	if err := s.repo.Create(ctx, v); err != nil {
		s.logger.Error("create vehicle persist failed", zap.Error(err))
		return VehicleResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create vehicle success", zap.String("vehicle_id", v.ID.String()))
	return mapToResponse(*v), nil
}

func (s *service) GetAll(ctx context.Context) ([]VehicleResponse, error) {
	vehicles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	resp := make([]VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		resp[i] = mapToResponse(v)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (VehicleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return VehicleResponse{}, vehicleerrors.ErrInvalidVehicleID
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return VehicleResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*v), nil
}

// SetStatus is the independent status mutation (maintenance, inactive) that
// runs outside the matcher; the matcher re-reads status on every attempt.
func (s *service) SetStatus(ctx context.Context, id string, req SetVehicleStatusRequest) (VehicleResponse, error) {
	s.logger.Debug("set vehicle status requested",
		zap.String("vehicle_id", id),
		zap.String("target_status", req.Status),
	)

	if !IsValidStatus(req.Status) {
		return VehicleResponse{}, vehicleerrors.ErrInvalidStatus
	}

	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return VehicleResponse{}, mapRepositoryError(err)
	}

	v.Status = req.Status
	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("set vehicle status persist failed",
			zap.String("vehicle_id", id),
			zap.Error(err),
		)
		return VehicleResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("set vehicle status success",
		zap.String("vehicle_id", id),
		zap.String("status", req.Status),
	)
	return mapToResponse(*v), nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return vehicleerrors.ErrVehicleNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_vehicle_plate" {
			return vehicleerrors.ErrPlateAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_vehicle_plate") {
		return vehicleerrors.ErrPlateAlreadyExists
	}

	return err
}

func mapToResponse(v Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:          v.ID.String(),
		PlateNumber: v.PlateNumber,
		VehicleType: v.VehicleType,
		Capacity:    v.Capacity,
		OdometerKm:  v.OdometerKm,
		Status:      v.Status,
	}
	if v.AssignedDriverID != nil {
		d := v.AssignedDriverID.String()
		resp.AssignedDriverID = &d
	}
	return resp
}
