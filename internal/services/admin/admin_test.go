package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bizplan/internal/models"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) DeleteUserCascade(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRepository) SetBanned(ctx context.Context, userID string, banned bool) error {
	args := m.Called(ctx, userID, banned)
	return args.Error(0)
}

func (m *MockRepository) GrantRole(ctx context.Context, userID, role string) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockRepository) RevokeRole(ctx context.Context, userID, role string) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.UserSummary, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockRepository) ListPlansByUser(ctx context.Context, userID string, limit, offset int) ([]models.BusinessPlan, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BusinessPlan), args.Error(1)
}

func (m *MockRepository) DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGate_IsAdmin(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setupMocks func(*MockRepository)
		want       bool
		wantErr    bool
	}{
		{
			name:   "admin",
			userID: "a1",
			setupMocks: func(r *MockRepository) {
				r.On("HasRole", mock.Anything, "a1", models.RoleAdmin).Return(true, nil).Once()
			},
			want: true,
		},
		{
			name:   "regular user",
			userID: "u1",
			setupMocks: func(r *MockRepository) {
				r.On("HasRole", mock.Anything, "u1", models.RoleAdmin).Return(false, nil).Once()
			},
		},
		{
			name:       "anonymous never hits storage",
			setupMocks: func(*MockRepository) {},
		},
		{
			name:   "lookup failure",
			userID: "u1",
			setupMocks: func(r *MockRepository) {
				r.On("HasRole", mock.Anything, "u1", models.RoleAdmin).Return(false, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			ok, err := NewGate(repo).IsAdmin(context.Background(), tt.userID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_DeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMocks func(*MockRepository, *MockCache)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:   "success invalidates dashboard",
			target: "u2",
			setupMocks: func(r *MockRepository, c *MockCache) {
				r.On("DeleteUserCascade", mock.Anything, "u2").Return(nil).Once()
				c.On("Invalidate", mock.Anything, []string{dashboardKey}).Return(nil).Once()
			},
		},
		{
			name:       "empty target",
			target:     " ",
			setupMocks: func(*MockRepository, *MockCache) {},
			wantErr:    ErrUserIDRequired,
		},
		{
			name:       "self delete",
			target:     "admin",
			setupMocks: func(*MockRepository, *MockCache) {},
			wantErr:    ErrSelfDelete,
		},
		{
			name:   "unknown target",
			target: "ghost",
			setupMocks: func(r *MockRepository, _ *MockCache) {
				r.On("DeleteUserCascade", mock.Anything, "ghost").Return(repository.ErrNotFound).Once()
			},
			wantErr: ErrUserNotFound,
		},
		{
			name:   "storage failure rolls back",
			target: "u2",
			setupMocks: func(r *MockRepository, _ *MockCache) {
				r.On("DeleteUserCascade", mock.Anything, "u2").Return(errors.New("fk violation")).Once()
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			cache := new(MockCache)
			tt.setupMocks(repo, cache)

			err := New(repo, cache, newNoopLogger()).DeleteUser(context.Background(), "admin", tt.target)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_SetStatus(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		action     string
		setupMocks func(*MockRepository)
		wantMsg    string
		wantErr    error
	}{
		{
			name:   "ban",
			target: "u2",
			action: ActionBan,
			setupMocks: func(r *MockRepository) {
				r.On("SetBanned", mock.Anything, "u2", true).Return(nil).Once()
			},
			wantMsg: MsgUserBanned,
		},
		{
			name:   "unban",
			target: "u2",
			action: ActionUnban,
			setupMocks: func(r *MockRepository) {
				r.On("SetBanned", mock.Anything, "u2", false).Return(nil).Once()
			},
			wantMsg: MsgUserUnbanned,
		},
		{
			name:   "self unban allowed",
			target: "admin",
			action: ActionUnban,
			setupMocks: func(r *MockRepository) {
				r.On("SetBanned", mock.Anything, "admin", false).Return(nil).Once()
			},
			wantMsg: MsgUserUnbanned,
		},
		{name: "missing action", target: "u2", setupMocks: func(*MockRepository) {}, wantErr: ErrActionRequired},
		{name: "missing user", action: ActionBan, setupMocks: func(*MockRepository) {}, wantErr: ErrActionRequired},
		{name: "bad action", target: "u2", action: "suspend", setupMocks: func(*MockRepository) {}, wantErr: ErrInvalidBanAction},
		{name: "self ban", target: "admin", action: ActionBan, setupMocks: func(*MockRepository) {}, wantErr: ErrSelfBan},
		{
			name:   "unknown user",
			target: "ghost",
			action: ActionBan,
			setupMocks: func(r *MockRepository) {
				r.On("SetBanned", mock.Anything, "ghost", true).Return(repository.ErrNotFound).Once()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			msg, err := New(repo, new(MockCache), newNoopLogger()).SetStatus(context.Background(), "admin", tt.target, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantMsg, msg)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_SetAdmin(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		action     string
		setupMocks func(*MockRepository)
		wantMsg    string
		wantErr    error
	}{
		{
			name:   "grant",
			target: "u2",
			action: ActionGrant,
			setupMocks: func(r *MockRepository) {
				r.On("GetUser", mock.Anything, "u2").Return(&models.User{ID: "u2"}, nil).Once()
				r.On("GrantRole", mock.Anything, "u2", models.RoleAdmin).Return(nil).Once()
			},
			wantMsg: MsgAdminGranted,
		},
		{
			name:   "revoke",
			target: "u2",
			action: ActionRevoke,
			setupMocks: func(r *MockRepository) {
				r.On("GetUser", mock.Anything, "u2").Return(&models.User{ID: "u2"}, nil).Once()
				r.On("RevokeRole", mock.Anything, "u2", models.RoleAdmin).Return(nil).Once()
			},
			wantMsg: MsgAdminRevoked,
		},
		{name: "self revoke", target: "admin", action: ActionRevoke, setupMocks: func(*MockRepository) {}, wantErr: ErrSelfRevoke},
		{name: "bad action", target: "u2", action: "promote", setupMocks: func(*MockRepository) {}, wantErr: ErrInvalidRoleAction},
		{
			name:   "unknown user",
			target: "ghost",
			action: ActionGrant,
			setupMocks: func(r *MockRepository) {
				r.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			msg, err := New(repo, new(MockCache), newNoopLogger()).SetAdmin(context.Background(), "admin", tt.target, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantMsg, msg)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Dashboard(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := &models.DashboardStats{TotalProjects: 3, TotalUsers: 2}

	t.Run("cache miss loads and stores", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", mock.Anything, dashboardKey, mock.Anything).Return(false, nil).Once()
		repo.On("DashboardStats", mock.Anything, now).Return(stats, nil).Once()
		cache.On("Set", mock.Anything, dashboardKey, stats, dashboardTTL).Return(nil).Once()

		svc := New(repo, cache, newNoopLogger())
		svc.now = func() time.Time { return now }

		got, err := svc.Dashboard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalProjects)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips storage", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", mock.Anything, dashboardKey, mock.Anything).Run(func(args mock.Arguments) {
			*args.Get(2).(*models.DashboardStats) = models.DashboardStats{TotalUsers: 9}
		}).Return(true, nil).Once()

		got, err := New(repo, cache, newNoopLogger()).Dashboard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 9, got.TotalUsers)
		repo.AssertNotCalled(t, "DashboardStats", mock.Anything, mock.Anything)
	})

	t.Run("cache failure falls back to storage", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", mock.Anything, dashboardKey, mock.Anything).Return(false, errors.New("redis down")).Once()
		repo.On("DashboardStats", mock.Anything, mock.Anything).Return(stats, nil).Once()
		cache.On("Set", mock.Anything, dashboardKey, stats, dashboardTTL).Return(errors.New("redis down")).Once()

		got, err := New(repo, cache, newNoopLogger()).Dashboard(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stats, got)
	})
}

func TestService_ListUserPlans(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListPlansByUser", mock.Anything, "u2", defaultPageSize, 0).Return([]models.BusinessPlan{{ID: "p1"}}, nil).Once()

	svc := New(repo, new(MockCache), newNoopLogger())
	plans, err := svc.ListUserPlans(context.Background(), "u2", 0, 0)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	_, err = svc.ListUserPlans(context.Background(), "", 0, 0)
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestService_ListUsers(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListUsers", mock.Anything, 10, 20).Return([]models.UserSummary{{ID: "u1", IsAdmin: true}}, nil).Once()

	users, err := New(repo, new(MockCache), newNoopLogger()).ListUsers(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin)
}
