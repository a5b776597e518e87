package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

func TestBookingSlot_Capacity(t *testing.T) {
	s := &domain.BookingSlot{IsAvailable: true, MaxReservations: 2, CurrentReservations: 0}
	assert.True(t, s.HasCapacity())
	assert.False(t, s.IsFullyBooked())

	s.CurrentReservations = 2
	assert.False(t, s.HasCapacity())
	assert.True(t, s.IsFullyBooked())

	// Недоступный слот не принимает резервации даже при свободных местах
	s = &domain.BookingSlot{IsAvailable: false, MaxReservations: 2, CurrentReservations: 0}
	assert.False(t, s.HasCapacity())
}

func TestBookingSlot_IsElapsed(t *testing.T) {
	s := &domain.BookingSlot{
		SlotDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: types.TimeString("10:00"),
		EndTime:   types.TimeString("11:00"),
	}

	before := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	elapsed, err := s.IsElapsed(before)
	require.NoError(t, err)
	assert.False(t, elapsed)

	exactly := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	elapsed, err = s.IsElapsed(exactly)
	require.NoError(t, err)
	assert.True(t, elapsed)

	after := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	elapsed, err = s.IsElapsed(after)
	require.NoError(t, err)
	assert.True(t, elapsed)
}

func TestBookingSlot_EffectiveBasePrice(t *testing.T) {
	s := &domain.BookingSlot{}
	assert.InDelta(t, 100, s.EffectiveBasePrice(100), 0.001)

	s.BasePriceOverride = ptr.Ptr(250.0)
	assert.InDelta(t, 250, s.EffectiveBasePrice(100), 0.001)
}
