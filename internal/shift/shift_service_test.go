package shift

import (
	"context"
	"database/sql"
	"testing"
	"time"

	shifterrors "go-fleet/internal/shift/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	shifts  map[uuid.UUID]*DriverShift
	overlap bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{shifts: make(map[uuid.UUID]*DriverShift)}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, s *DriverShift) error {
	cp := *s
	f.shifts[s.ID] = &cp
	return nil
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*DriverShift, error) {
	s, ok := f.shifts[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}
func (f *fakeRepo) FindByDriverAndDate(ctx context.Context, driverID string, date time.Time) ([]DriverShift, error) {
	var out []DriverShift
	for _, s := range f.shifts {
		if s.DriverID.String() == driverID && s.ShiftDate.Equal(date) {
			out = append(out, *s)
		}
	}
	return out, nil
}
func (f *fakeRepo) FindMatchableByDate(ctx context.Context, date time.Time) ([]DriverShift, error) {
	return nil, nil
}
func (f *fakeRepo) HasOverlappingShift(ctx context.Context, driverID string, start, end time.Time, excludeID *string) (bool, error) {
	return f.overlap, nil
}
func (f *fakeRepo) Update(ctx context.Context, s *DriverShift) error {
	cp := *s
	f.shifts[s.ID] = &cp
	return nil
}

func setupShiftTest(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *fakeRepo, Service) {
	t.Helper()
	db, mock, _ := sqlmock.New()
	t.Cleanup(func() { db.Close() })

	repo := newFakeRepo()
	return db, mock, repo, NewService(db, repo)
}

func validShiftRequest() CreateShiftRequest {
	return CreateShiftRequest{
		DriverID:  uuid.New().String(),
		ShiftDate: "2025-03-12",
		StartTime: "08:00",
		EndTime:   "17:00",
	}
}

func TestShiftService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, mock, repo, svc := setupShiftTest(t)

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Create(context.Background(), validShiftRequest())

		assert.NoError(t, err)
		assert.Equal(t, StatusScheduled, resp.Status)
		assert.Equal(t, "2025-03-12", resp.ShiftDate)
		assert.Len(t, repo.shifts, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative overlapping shift", func(t *testing.T) {
		_, mock, repo, svc := setupShiftTest(t)
		repo.overlap = true

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Create(context.Background(), validShiftRequest())

		assert.ErrorIs(t, err, shifterrors.ErrShiftOverlap)
		assert.Empty(t, repo.shifts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative start not before end", func(t *testing.T) {
		_, _, _, svc := setupShiftTest(t)

		req := validShiftRequest()
		req.StartTime = "17:00"
		req.EndTime = "08:00"
		_, err := svc.Create(context.Background(), req)

		assert.ErrorIs(t, err, shifterrors.ErrInvalidTimeRange)
	})

	t.Run("negative bad date", func(t *testing.T) {
		_, _, _, svc := setupShiftTest(t)

		req := validShiftRequest()
		req.ShiftDate = "12-03-2025"
		_, err := svc.Create(context.Background(), req)

		assert.ErrorIs(t, err, shifterrors.ErrInvalidDateFormat)
	})
}

func TestShiftService_Transitions(t *testing.T) {
	seed := func(repo *fakeRepo, status string) *DriverShift {
		s := &DriverShift{
			ID:        uuid.New(),
			DriverID:  uuid.New(),
			ShiftDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
			StartTime: time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC),
			Status:    status,
		}
		repo.shifts[s.ID] = s
		return s
	}

	t.Run("scheduled to active to completed", func(t *testing.T) {
		_, mock, repo, svc := setupShiftTest(t)
		s := seed(repo, StatusScheduled)

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.Activate(context.Background(), s.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, StatusActive, resp.Status)

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err = svc.Complete(context.Background(), s.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, resp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scheduled can be absent or cancelled", func(t *testing.T) {
		_, mock, repo, svc := setupShiftTest(t)
		absent := seed(repo, StatusScheduled)
		cancelled := seed(repo, StatusScheduled)

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err := svc.MarkAbsent(context.Background(), absent.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, StatusAbsent, resp.Status)

		mock.ExpectBegin()
		mock.ExpectCommit()
		resp, err = svc.Cancel(context.Background(), cancelled.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, StatusCancelled, resp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative active cannot be cancelled", func(t *testing.T) {
		_, mock, repo, svc := setupShiftTest(t)
		s := seed(repo, StatusActive)

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Cancel(context.Background(), s.ID.String())

		assert.ErrorIs(t, err, shifterrors.ErrInvalidStatusTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative completed is terminal", func(t *testing.T) {
		_, mock, repo, svc := setupShiftTest(t)
		s := seed(repo, StatusCompleted)

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Activate(context.Background(), s.ID.String())

		assert.ErrorIs(t, err, shifterrors.ErrInvalidStatusTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative missing shift", func(t *testing.T) {
		_, mock, _, svc := setupShiftTest(t)

		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Activate(context.Background(), uuid.New().String())

		assert.ErrorIs(t, err, shifterrors.ErrShiftNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverShift_Contains(t *testing.T) {
	s := DriverShift{
		StartTime: time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC),
	}

	inside := func(fromH, toH int) bool {
		return s.Contains(
			time.Date(2025, 3, 12, fromH, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 12, toH, 0, 0, 0, time.UTC),
		)
	}

	assert.True(t, inside(8, 17))
	assert.True(t, inside(9, 12))
	assert.False(t, inside(7, 12))
	assert.False(t, inside(9, 18))
}
