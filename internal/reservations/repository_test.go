package reservations

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestLockKey_Deterministic(t *testing.T) {
	tenantID := uuid.New()
	spaceID := uuid.New()
	resourceID := uuid.New()

	assert.Equal(t, lockKey(tenantID, spaceID, nil), lockKey(tenantID, spaceID, nil))
	assert.Equal(t, lockKey(tenantID, spaceID, &resourceID), lockKey(tenantID, spaceID, &resourceID))
}

func TestLockKey_ResourceGetsOwnLane(t *testing.T) {
	tenantID := uuid.New()
	spaceID := uuid.New()
	resA := uuid.New()
	resB := uuid.New()

	spaceKey := lockKey(tenantID, spaceID, nil)
	assert.NotEqual(t, spaceKey, lockKey(tenantID, spaceID, &resA))
	assert.NotEqual(t, lockKey(tenantID, spaceID, &resA), lockKey(tenantID, spaceID, &resB))
}

func TestLockKey_TenantsDoNotCollide(t *testing.T) {
	spaceID := uuid.New()
	assert.NotEqual(t, lockKey(uuid.New(), spaceID, nil), lockKey(uuid.New(), spaceID, nil))
}

func TestAsTimeout(t *testing.T) {
	lockErr := &pgconn.PgError{Code: lockTimeoutSQLState, Message: "canceling statement due to lock timeout"}
	assert.ErrorIs(t, asTimeout(lockErr), ErrTimeout)
	assert.ErrorIs(t, asTimeout(fmt.Errorf("exec: %w", lockErr)), ErrTimeout)
	assert.ErrorIs(t, asTimeout(context.DeadlineExceeded), ErrTimeout)

	other := errors.New("duplicate key value")
	assert.Equal(t, other, asTimeout(other))
	assert.NotErrorIs(t, asTimeout(context.Canceled), ErrTimeout)
}

func TestUTCDayBounds(t *testing.T) {
	start, end := utcDayBounds(2026, 3, 6)
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 2026, end.Year())
	assert.Equal(t, time.March, end.Month())
	assert.Equal(t, 6, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.True(t, end.Before(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))
}
