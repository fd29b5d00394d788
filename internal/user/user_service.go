package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	usererrors "go-fleet/internal/user/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const UserOptionsKey = "users:options"

// maxHierarchyDepth membatasi walk saat validasi siklus manager.
const maxHierarchyDepth = 32

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetOptions(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	GetManager(ctx context.Context, userID string) (*User, error)
	AssignManager(ctx context.Context, userID string, req AssignManagerRequest) (UserResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	s.logger.Debug("create user requested",
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)

	level := req.PositionLevel
	if level < 1 {
		level = 1
	}

	u := &User{
		ID:            uuid.New(),
		FullName:      req.FullName,
		Email:         req.Email,
		Role:          req.Role,
		PositionLevel: level,
		IsActive:      true,
	}
	if req.DepartmentID != nil {
		if id, err := uuid.Parse(*req.DepartmentID); err == nil {
			u.DepartmentID = &id
		}
	}
	if req.ManagerID != nil && *req.ManagerID != "" {
		managerID, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			return UserResponse{}, usererrors.ErrInvalidManagerID
		}
		if _, err := s.repo.FindByID(ctx, managerID.String()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return UserResponse{}, usererrors.ErrManagerNotFound
			}
			return UserResponse{}, err
		}
		u.ManagerID = &managerID
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("create user persist failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("create user success", zap.String("user_id", u.ID.String()))
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(users), nil
}

func (s *service) GetOptions(ctx context.Context) ([]UserResponse, error) {
	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, UserOptionsKey).Result(); err == nil {
			var resp []UserResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight untuk handle traffic tinggi saat dispatcher buka form
	v, err, _ := s.sf.Do(UserOptionsKey, func() (interface{}, error) {
		users, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(users)

		// 3. Simpan ke Redis (TTL 1 jam cukup karena data master)
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, UserOptionsKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]UserResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

// GetManager returns nil without error when the user has no manager.
func (s *service) GetManager(ctx context.Context, userID string) (*User, error) {
	m, err := s.repo.FindManagerOf(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *service) AssignManager(ctx context.Context, userID string, req AssignManagerRequest) (UserResponse, error) {
	s.logger.Debug("assign manager requested",
		zap.String("user_id", userID),
		zap.String("manager_id", req.ManagerID),
	)

	if _, err := uuid.Parse(userID); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}
	managerID, err := uuid.Parse(req.ManagerID)
	if err != nil {
		return UserResponse{}, usererrors.ErrInvalidManagerID
	}
	if managerID.String() == userID {
		return UserResponse{}, usererrors.ErrSelfManager
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}

	if err := s.checkNoCycle(ctx, userID, managerID.String()); err != nil {
		s.logger.Warn("assign manager rejected",
			zap.String("user_id", userID),
			zap.String("manager_id", managerID.String()),
			zap.Error(err),
		)
		return UserResponse{}, err
	}

	u.ManagerID = &managerID
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("assign manager persist failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("assign manager success",
		zap.String("user_id", userID),
		zap.String("manager_id", managerID.String()),
	)
	return mapToResponse(*u), nil
}

// checkNoCycle walks the chain upward from the candidate manager; if it
// reaches userID the assignment would close a loop.
func (s *service) checkNoCycle(ctx context.Context, userID, candidateManagerID string) error {
	current := candidateManagerID
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		m, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usererrors.ErrManagerNotFound
			}
			return err
		}
		if m.ManagerID == nil {
			return nil
		}
		next := m.ManagerID.String()
		if next == userID {
			return usererrors.ErrManagerCycle
		}
		current = next
	}
	return usererrors.ErrManagerCycle
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, UserOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate user options cache",
			zap.Error(err),
			zap.String("key", UserOptionsKey),
		)
	}
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:            u.ID.String(),
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		PositionLevel: u.PositionLevel,
		IsActive:      u.IsActive,
	}
	if u.DepartmentID != nil {
		v := u.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if u.ManagerID != nil {
		v := u.ManagerID.String()
		resp.ManagerID = &v
	}
	if u.Manager != nil {
		resp.ManagerName = u.Manager.FullName
	}
	return resp
}

func mapToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp
}
