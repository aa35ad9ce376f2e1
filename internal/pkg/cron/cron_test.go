package cron

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qs3c/leaderfirst_server/internal/model"
	"github.com/qs3c/leaderfirst_server/internal/repository"
	"github.com/qs3c/leaderfirst_server/internal/testutil"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireDuePlans(time.Time) (int64, error) {
	e.calls.Add(1)
	return 0, e.err
}

func TestService_RunNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	users := repository.NewUserRepository(db)
	due := testutil.TestUser(t, db, testutil.WithExpiredPlan("core"))
	current := testutil.TestUser(t, db, testutil.WithActivePlan("core"))

	svc := NewService(users, time.Hour, zap.NewNop())
	assert.Equal(t, int64(1), svc.RunNow())

	found, err := users.GetByID(due.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusExpired, found.PlanStatus)

	found, err = users.GetByID(current.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusActive, found.PlanStatus)

	// 第二轮没有可处理的行
	assert.Equal(t, int64(0), svc.RunNow())
}

func TestService_RunNow_Error(t *testing.T) {
	expirer := &countingExpirer{err: errors.New("db down")}
	svc := NewService(expirer, time.Hour, zap.NewNop())

	assert.Equal(t, int64(0), svc.RunNow())
	assert.Equal(t, int32(1), expirer.calls.Load())
}

func TestService_StartStop(t *testing.T) {
	expirer := &countingExpirer{}
	svc := NewService(expirer, 10*time.Millisecond, zap.NewNop())

	svc.Start()
	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	svc.Stop()
	calls := expirer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, expirer.calls.Load())

	// 重复 Stop 不会 panic
	svc.Stop()
}

func TestNewService_DefaultInterval(t *testing.T) {
	svc := NewService(&countingExpirer{}, 0, zap.NewNop())
	assert.Equal(t, time.Hour, svc.interval)
}
