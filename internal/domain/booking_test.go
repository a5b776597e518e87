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

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to domain.BookingStatus
	}{
		{domain.StatusPending, domain.StatusConfirmed},
		{domain.StatusPending, domain.StatusRejected},
		{domain.StatusPending, domain.StatusCancelled},
		{domain.StatusPaymentPending, domain.StatusConfirmed},
		{domain.StatusPaymentPending, domain.StatusCancelled},
		{domain.StatusConfirmed, domain.StatusServiceDelivered},
		{domain.StatusConfirmed, domain.StatusRejected},
		{domain.StatusConfirmed, domain.StatusCancelled},
		{domain.StatusServiceDelivered, domain.StatusCompleted},
		{domain.StatusServiceDelivered, domain.StatusDisputed},
		{domain.StatusServiceDelivered, domain.StatusCancelled},
		{domain.StatusAwaitingConfirmation, domain.StatusCompleted},
		{domain.StatusAwaitingConfirmation, domain.StatusDisputed},
		{domain.StatusDisputed, domain.StatusCompleted},
		{domain.StatusDisputed, domain.StatusCancelled},
	}

	for _, tt := range allowed {
		assert.True(t, domain.CanTransition(tt.from, tt.to), "%s -> %s must be allowed", tt.from, tt.to)
	}

	forbidden := []struct {
		from, to domain.BookingStatus
	}{
		{domain.StatusPending, domain.StatusCompleted},
		{domain.StatusPending, domain.StatusServiceDelivered},
		{domain.StatusConfirmed, domain.StatusCompleted},
		{domain.StatusConfirmed, domain.StatusPending},
		{domain.StatusCancelled, domain.StatusConfirmed},
		{domain.StatusCompleted, domain.StatusDisputed},
		{domain.StatusRejected, domain.StatusPending},
		{domain.StatusDisputed, domain.StatusServiceDelivered},
	}

	for _, tt := range forbidden {
		assert.False(t, domain.CanTransition(tt.from, tt.to), "%s -> %s must be forbidden", tt.from, tt.to)
	}
}

// Терминальные статусы не имеют исходящих переходов
func TestCanTransition_TerminalStatuses(t *testing.T) {
	terminal := []domain.BookingStatus{
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusRejected,
	}

	all := []domain.BookingStatus{
		domain.StatusPending, domain.StatusConfirmed, domain.StatusRejected,
		domain.StatusCancelled, domain.StatusServiceDelivered, domain.StatusCompleted,
		domain.StatusPaymentPending, domain.StatusAwaitingConfirmation, domain.StatusDisputed,
	}

	for _, from := range terminal {
		assert.True(t, from.IsTerminal())
		assert.Empty(t, domain.AllowedNextStatuses(from))
		for _, to := range all {
			assert.False(t, domain.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestBookingStatus_IsInternal(t *testing.T) {
	assert.True(t, domain.StatusPaymentPending.IsInternal())
	assert.True(t, domain.StatusAwaitingConfirmation.IsInternal())
	assert.True(t, domain.StatusDisputed.IsInternal())

	assert.False(t, domain.StatusPending.IsInternal())
	assert.False(t, domain.StatusConfirmed.IsInternal())
	assert.False(t, domain.StatusCompleted.IsInternal())
}

func TestBookingStatus_IsValid(t *testing.T) {
	assert.True(t, domain.StatusPending.IsValid())
	assert.True(t, domain.StatusDisputed.IsValid())
	assert.False(t, domain.BookingStatus("archived").IsValid())
	assert.False(t, domain.BookingStatus("").IsValid())
}

func TestBooking_CanBeCancelled(t *testing.T) {
	cancellable := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusPaymentPending,
		domain.StatusConfirmed,
		domain.StatusServiceDelivered,
		domain.StatusAwaitingConfirmation,
		domain.StatusDisputed,
	}
	for _, s := range cancellable {
		b := &domain.Booking{Status: s}
		assert.True(t, b.CanBeCancelled(), "status=%s", s)
	}

	for _, s := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusCancelled, domain.StatusRejected} {
		b := &domain.Booking{Status: s}
		assert.False(t, b.CanBeCancelled(), "status=%s", s)
	}
}

func TestBooking_CanBeRescheduled(t *testing.T) {
	for _, s := range []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed} {
		b := &domain.Booking{Status: s}
		assert.True(t, b.CanBeRescheduled(), "status=%s", s)
	}

	for _, s := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusCompleted, domain.StatusRejected} {
		b := &domain.Booking{Status: s}
		assert.False(t, b.CanBeRescheduled(), "status=%s", s)
	}
}

func TestBooking_HoldsSlot(t *testing.T) {
	withSlot := &domain.Booking{SlotID: ptr.Ptr(int64(42))}
	assert.True(t, withSlot.HoldsSlot())

	withoutSlot := &domain.Booking{}
	assert.False(t, withoutSlot.HoldsSlot())
}

func TestBooking_ScheduledAt(t *testing.T) {
	b := &domain.Booking{
		BookingDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   types.TimeString("14:00"),
	}

	at, err := b.ScheduledAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), at)
}
