package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	usererrors "go-fleet/internal/user/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	users     map[uuid.UUID]*User
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uuid.UUID]*User)}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}
func (f *fakeRepo) FindAll(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*User, error) {
	u, ok := f.users[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}
func (f *fakeRepo) FindManagerOf(ctx context.Context, userID string) (*User, error) {
	u, ok := f.users[uuid.MustParse(userID)]
	if !ok || u.ManagerID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	m, ok := f.users[*u.ManagerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}
func (f *fakeRepo) Update(ctx context.Context, u *User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) seed(fullName string) *User {
	u := &User{
		ID:            uuid.New(),
		FullName:      fullName,
		Email:         fullName + "@example.com",
		Role:          RoleRequester,
		PositionLevel: 1,
		IsActive:      true,
	}
	f.users[u.ID] = u
	return u
}

func TestUserService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo, nil)

		resp, err := svc.Create(context.Background(), CreateUserRequest{
			FullName: "Andi",
			Email:    "andi@example.com",
			Role:     RoleRequester,
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.PositionLevel)
		assert.True(t, resp.IsActive)
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "uq_user_email"}
		svc := NewService(nil, repo, nil)

		_, err := svc.Create(context.Background(), CreateUserRequest{
			FullName: "Andi",
			Email:    "andi@example.com",
			Role:     RoleRequester,
		})

		assert.ErrorIs(t, err, usererrors.ErrEmailAlreadyExists)
	})

	t.Run("negative unknown manager", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo, nil)

		managerID := uuid.New().String()
		_, err := svc.Create(context.Background(), CreateUserRequest{
			FullName:  "Andi",
			Email:     "andi@example.com",
			Role:      RoleRequester,
			ManagerID: &managerID,
		})

		assert.ErrorIs(t, err, usererrors.ErrManagerNotFound)
	})
}

func TestUserService_GetManager(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(nil, repo, nil)

	manager := repo.seed("manager")
	report := repo.seed("report")
	report.ManagerID = &manager.ID

	t.Run("success one hop", func(t *testing.T) {
		m, err := svc.GetManager(context.Background(), report.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, manager.ID, m.ID)
	})

	t.Run("no manager returns nil without error", func(t *testing.T) {
		m, err := svc.GetManager(context.Background(), manager.ID.String())

		assert.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestUserService_AssignManager(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo, nil)
		boss := repo.seed("boss")
		andi := repo.seed("andi")

		resp, err := svc.AssignManager(context.Background(), andi.ID.String(), AssignManagerRequest{ManagerID: boss.ID.String()})

		assert.NoError(t, err)
		assert.Equal(t, boss.ID.String(), *resp.ManagerID)
	})

	t.Run("negative self manager", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo, nil)
		andi := repo.seed("andi")

		_, err := svc.AssignManager(context.Background(), andi.ID.String(), AssignManagerRequest{ManagerID: andi.ID.String()})

		assert.ErrorIs(t, err, usererrors.ErrSelfManager)
	})

	t.Run("negative direct cycle", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo, nil)
		boss := repo.seed("boss")
		andi := repo.seed("andi")
		boss.ManagerID = &andi.ID

		_, err := svc.AssignManager(context.Background(), andi.ID.String(), AssignManagerRequest{ManagerID: boss.ID.String()})

		assert.ErrorIs(t, err, usererrors.ErrManagerCycle)
	})

	t.Run("negative transitive cycle", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(nil, repo, nil)
		a := repo.seed("a")
		b := repo.seed("b")
		c := repo.seed("c")
		b.ManagerID = &c.ID
		c.ManagerID = &a.ID

		_, err := svc.AssignManager(context.Background(), a.ID.String(), AssignManagerRequest{ManagerID: b.ID.String()})

		assert.ErrorIs(t, err, usererrors.ErrManagerCycle)
	})
}

func TestUserService_GetOptions(t *testing.T) {
	t.Run("cache hit skips the repository", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		repo := newFakeRepo()
		svc := NewService(nil, repo, redisClient)

		cached := []UserResponse{{ID: uuid.New().String(), FullName: "cached"}}
		payload, _ := json.Marshal(cached)
		redisMock.ExpectGet(UserOptionsKey).SetVal(string(payload))

		resp, err := svc.GetOptions(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, "cached", resp[0].FullName)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cache miss reads db and fills the cache", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		repo := newFakeRepo()
		repo.seed("andi")
		svc := NewService(nil, repo, redisClient)

		redisMock.ExpectGet(UserOptionsKey).RedisNil()
		redisMock.Regexp().ExpectSet(UserOptionsKey, `.*`, 1*time.Hour).SetVal("OK")

		resp, err := svc.GetOptions(context.Background())

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
