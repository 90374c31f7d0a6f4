package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleScopeConstructors(t *testing.T) {
	id := uuid.New()

	s, err := NewSpaceScope(id)
	require.NoError(t, err)
	assert.Equal(t, ScheduleScope{Kind: ScopeSpace, ID: id}, s)

	r, err := NewResourceScope(id)
	require.NoError(t, err)
	assert.Equal(t, ScopeResource, r.Kind)

	g, err := NewGlobalScope(id)
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, g.Kind)
}

func TestScheduleScopeRejectsNilID(t *testing.T) {
	_, err := NewSpaceScope(uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidScope)
	_, err = NewResourceScope(uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidScope)
	_, err = NewGlobalScope(uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestScheduleScopeColumnsRoundTrip(t *testing.T) {
	id := uuid.New()
	for _, mk := range []func(uuid.UUID) (ScheduleScope, error){NewSpaceScope, NewResourceScope, NewGlobalScope} {
		scope, err := mk(id)
		require.NoError(t, err)

		tenantID, spaceID, resourceID := scope.Columns()
		set := 0
		for _, p := range []*uuid.UUID{tenantID, spaceID, resourceID} {
			if p != nil {
				set++
			}
		}
		assert.Equal(t, 1, set, "exactly one column per scope")

		back, err := ScopeFromColumns(tenantID, spaceID, resourceID)
		require.NoError(t, err)
		assert.Equal(t, scope, back)
	}
}

func TestScopeFromColumns_AllNil(t *testing.T) {
	_, err := ScopeFromColumns(nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestReservationStatusBlocks(t *testing.T) {
	assert.True(t, StatusPending.Blocks())
	assert.True(t, StatusConfirmed.Blocks())
	assert.True(t, StatusCompleted.Blocks())
	assert.False(t, StatusCancelled.Blocks())
	assert.False(t, StatusNoShow.Blocks())
}

func TestReservationStatusValid(t *testing.T) {
	assert.True(t, StatusConfirmed.Valid())
	assert.False(t, ReservationStatus("UNKNOWN").Valid())
}
