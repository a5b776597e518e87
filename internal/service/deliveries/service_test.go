package deliveries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	deliveryRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/delivery"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/deliveries/models"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

const (
	customerID = int64(10)
	operatorID = int64(50)
	strangerID = int64(999)
)

// 2026-03-02 понедельник, услуга в 10:00
var (
	bookingDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	afterStart  = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	beforeStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type inlineTxManager struct{}

func (inlineTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type statusChange struct {
	status domain.BookingStatus
	step   domain.BookingStep
}

type fakeBookingRepo struct {
	booking *domain.Booking
	changes []statusChange
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.booking, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, _ int64, status domain.BookingStatus, step domain.BookingStep) error {
	r.changes = append(r.changes, statusChange{status, step})
	return nil
}

type fakeDeliveryRepo struct {
	delivery    *domain.ServiceDelivery
	collections []*domain.CashCollection

	confirmed      *deliveryRepo.ConfirmParams
	disputedReason string
}

func (r *fakeDeliveryRepo) Upsert(_ context.Context, d *domain.ServiceDelivery) (*domain.ServiceDelivery, error) {
	stored := *d
	if r.delivery != nil {
		stored.ID = r.delivery.ID
	} else {
		stored.ID = 1
	}
	r.delivery = &stored
	return &stored, nil
}

func (r *fakeDeliveryRepo) GetByBookingID(_ context.Context, bookingID int64) (*domain.ServiceDelivery, error) {
	if r.delivery == nil || r.delivery.BookingID != bookingID {
		return nil, deliveryRepo.ErrDeliveryNotFound
	}
	return r.delivery, nil
}

func (r *fakeDeliveryRepo) Confirm(_ context.Context, bookingID int64, params deliveryRepo.ConfirmParams) error {
	if r.delivery == nil || r.delivery.BookingID != bookingID || r.delivery.IsConfirmed() {
		return deliveryRepo.ErrDeliveryNotFound
	}
	r.confirmed = &params
	r.delivery.CustomerConfirmedAt = &params.ConfirmedAt
	r.delivery.Rating = &params.Rating
	return nil
}

func (r *fakeDeliveryRepo) MarkDisputed(_ context.Context, bookingID int64, reason string) error {
	if r.delivery == nil || r.delivery.BookingID != bookingID {
		return deliveryRepo.ErrDeliveryNotFound
	}
	r.disputedReason = reason
	r.delivery.Disputed = true
	r.delivery.DisputeReason = &reason
	return nil
}

func (r *fakeDeliveryRepo) CreateCashCollection(_ context.Context, c *domain.CashCollection) (*domain.CashCollection, error) {
	stored := *c
	stored.ID = int64(len(r.collections) + 1)
	r.collections = append(r.collections, &stored)
	return &stored, nil
}

func (r *fakeDeliveryRepo) GetCashCollections(_ context.Context, _ int64) ([]*domain.CashCollection, error) {
	return r.collections, nil
}

type fakeCatalog struct {
	provider *catalogClient.Provider
}

func (c *fakeCatalog) GetProvider(_ context.Context, providerID int64) (*catalogClient.Provider, error) {
	if c.provider == nil || c.provider.ID != providerID {
		return nil, catalogClient.ErrProviderNotFound
	}
	return c.provider, nil
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:          77,
		CustomerID:  customerID,
		ServiceID:   1,
		ProviderID:  2,
		SlotID:      ptr.Ptr(int64(5)),
		BookingDate: bookingDate,
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
		AddressLine: "ул. Ленина, д. 1",
		City:        "Москва",
		Status:      domain.StatusConfirmed,
		Step:        domain.StepPaymentConfirmed,
		Tier:        domain.TierNormal,
		BasePrice:   100,
		TotalAmount: 100,
		ServiceName: "Мойка окон",
	}
}

func newTestService(booking *domain.Booking, now time.Time) (*Service, *fakeBookingRepo, *fakeDeliveryRepo) {
	bookings := &fakeBookingRepo{booking: booking}
	delivered := &fakeDeliveryRepo{}
	catalog := &fakeCatalog{provider: &catalogClient.Provider{
		ID:          2,
		Name:        "Чистый дом",
		IsActive:    true,
		OperatorIDs: []int64{operatorID},
	}}

	svc := NewService(bookings, delivered, catalog, inlineTxManager{}, nopLogger{}).
		WithTimeProvider(&fixedTime{now: now})
	return svc, bookings, delivered
}

func TestMarkDelivered_Success(t *testing.T) {
	svc, bookings, delivered := newTestService(confirmedBooking(), afterStart)

	resp, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{
		UserID:    operatorID,
		Notes:     ptr.Ptr("всё помыто"),
		PhotoRefs: []string{"photos/77-1.jpg"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), resp.BookingID)
	assert.Equal(t, operatorID, resp.DeliveredBy)
	assert.Equal(t, afterStart, resp.DeliveredAt)

	require.NotNil(t, delivered.delivery)
	require.Len(t, bookings.changes, 1)
	assert.Equal(t, domain.StatusServiceDelivered, bookings.changes[0].status)
	assert.Equal(t, domain.StepDelivered, bookings.changes[0].step)
}

func TestMarkDelivered_TooEarly(t *testing.T) {
	svc, bookings, delivered := newTestService(confirmedBooking(), beforeStart)

	_, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: operatorID})

	assert.ErrorIs(t, err, ErrTooEarly)
	assert.Nil(t, delivered.delivery)
	assert.Empty(t, bookings.changes)
}

func TestMarkDelivered_ExactlyAtScheduledStart(t *testing.T) {
	atStart := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(confirmedBooking(), atStart)

	_, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: operatorID})

	assert.NoError(t, err)
}

func TestMarkDelivered_RepeatedCallIsIdempotent(t *testing.T) {
	booking := confirmedBooking()
	svc, bookings, delivered := newTestService(booking, afterStart)

	first, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: operatorID})
	require.NoError(t, err)
	booking.Status = domain.StatusServiceDelivered

	second, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{
		UserID: operatorID,
		Notes:  ptr.Ptr("добавил фото"),
		PhotoRefs: []string{
			"photos/77-1.jpg",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "добавил фото", *delivered.delivery.Notes)

	// Статус меняется только первым вызовом
	require.Len(t, bookings.changes, 1)
	assert.Equal(t, domain.StatusServiceDelivered, bookings.changes[0].status)
}

func TestMarkDelivered_StatusGuard(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusDisputed,
		domain.StatusCompleted,
		domain.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			booking := confirmedBooking()
			booking.Status = status
			svc, _, _ := newTestService(booking, afterStart)

			_, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: operatorID})

			assert.ErrorIs(t, err, ErrNotConfirmedBooking)
		})
	}
}

func TestMarkDelivered_AccessControl(t *testing.T) {
	t.Run("stranger is denied", func(t *testing.T) {
		svc, _, _ := newTestService(confirmedBooking(), afterStart)

		_, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: strangerID})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("customer is not an operator", func(t *testing.T) {
		svc, _, _ := newTestService(confirmedBooking(), afterStart)

		_, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: customerID})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestMarkDelivered_BookingNotFound(t *testing.T) {
	svc, _, _ := newTestService(confirmedBooking(), afterStart)

	_, err := svc.MarkDelivered(context.Background(), 404, &models.MarkDeliveredRequest{UserID: operatorID})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestConfirmCompletion_Success(t *testing.T) {
	booking := confirmedBooking()
	svc, bookings, delivered := newTestService(booking, afterStart)

	_, err := svc.MarkDelivered(context.Background(), 77, &models.MarkDeliveredRequest{UserID: operatorID})
	require.NoError(t, err)
	booking.Status = domain.StatusServiceDelivered

	err = svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
		UserID:    customerID,
		Rating:    5,
		Notes:     ptr.Ptr("отличная работа"),
		Recommend: true,
	})

	require.NoError(t, err)
	require.NotNil(t, delivered.confirmed)
	assert.Equal(t, 5, delivered.confirmed.Rating)
	assert.True(t, delivered.confirmed.Recommend)

	last := bookings.changes[len(bookings.changes)-1]
	assert.Equal(t, domain.StatusCompleted, last.status)
	assert.Equal(t, domain.StepClosed, last.step)
}

func TestConfirmCompletion_AwaitingConfirmationStatus(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusAwaitingConfirmation
	svc, _, delivered := newTestService(booking, afterStart)
	delivered.delivery = &domain.ServiceDelivery{ID: 1, BookingID: 77, DeliveredAt: afterStart, DeliveredBy: operatorID}

	err := svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
		UserID: customerID,
		Rating: 4,
	})

	assert.NoError(t, err)
}

func TestConfirmCompletion_InvalidRating(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, _ := newTestService(booking, afterStart)

	for _, rating := range []int{0, -1, 6} {
		err := svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
			UserID: customerID,
			Rating: rating,
		})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
}

func TestConfirmCompletion_OnlyCustomer(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, _ := newTestService(booking, afterStart)

	err := svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
		UserID: operatorID,
		Rating: 5,
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestConfirmCompletion_NotDelivered(t *testing.T) {
	// Статус confirmed: исполнитель ещё не отмечал выполнение
	svc, _, _ := newTestService(confirmedBooking(), afterStart)

	err := svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
		UserID: customerID,
		Rating: 5,
	})

	assert.ErrorIs(t, err, ErrNotDelivered)
}

func TestConfirmCompletion_MissingDeliveryRecord(t *testing.T) {
	// Статус service_delivered, но записи о выполнении нет: данные разошлись
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, _ := newTestService(booking, afterStart)

	err := svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
		UserID: customerID,
		Rating: 5,
	})

	assert.ErrorIs(t, err, ErrDeliveryNotFound)
}

func TestConfirmCompletion_AlreadyConfirmed(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, delivered := newTestService(booking, afterStart)
	delivered.delivery = &domain.ServiceDelivery{
		ID:                  1,
		BookingID:           77,
		DeliveredAt:         afterStart,
		DeliveredBy:         operatorID,
		CustomerConfirmedAt: ptr.Ptr(afterStart),
		Rating:              ptr.Ptr(5),
	}

	err := svc.ConfirmCompletion(context.Background(), 77, &models.ConfirmCompletionRequest{
		UserID: customerID,
		Rating: 4,
	})

	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestOpenDispute_Success(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, bookings, delivered := newTestService(booking, afterStart)
	delivered.delivery = &domain.ServiceDelivery{ID: 1, BookingID: 77, DeliveredAt: afterStart, DeliveredBy: operatorID}

	err := svc.OpenDispute(context.Background(), 77, &models.OpenDisputeRequest{
		UserID: customerID,
		Reason: "работа выполнена не полностью",
	})

	require.NoError(t, err)
	assert.Equal(t, "работа выполнена не полностью", delivered.disputedReason)

	require.Len(t, bookings.changes, 1)
	assert.Equal(t, domain.StatusDisputed, bookings.changes[0].status)
}

func TestOpenDispute_ReasonRequired(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, _ := newTestService(booking, afterStart)

	err := svc.OpenDispute(context.Background(), 77, &models.OpenDisputeRequest{
		UserID: customerID,
		Reason: "   ",
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOpenDispute_OnlyCustomer(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, _ := newTestService(booking, afterStart)

	err := svc.OpenDispute(context.Background(), 77, &models.OpenDisputeRequest{
		UserID: operatorID,
		Reason: "не та претензия",
	})

	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRecordCashCollection_Success(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, bookings, delivered := newTestService(booking, afterStart)

	resp, err := svc.RecordCashCollection(context.Background(), 77, &models.RecordCashCollectionRequest{
		UserID: operatorID,
		Amount: 100,
		Note:   ptr.Ptr("наличными при выезде"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), resp.BookingID)
	assert.Equal(t, booking.ProviderID, resp.ProviderID)
	assert.Equal(t, 100.0, resp.Amount)
	assert.Equal(t, afterStart, resp.CollectedAt)

	require.Len(t, delivered.collections, 1)
	// Бухгалтерская запись не трогает статус бронирования
	assert.Empty(t, bookings.changes)
}

func TestRecordCashCollection_AmountMismatch(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, delivered := newTestService(booking, afterStart)

	_, err := svc.RecordCashCollection(context.Background(), 77, &models.RecordCashCollectionRequest{
		UserID: operatorID,
		Amount: 99.50,
	})

	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Empty(t, delivered.collections)
}

func TestRecordCashCollection_AmountWithinEpsilon(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusCompleted
	svc, _, _ := newTestService(booking, afterStart)

	_, err := svc.RecordCashCollection(context.Background(), 77, &models.RecordCashCollectionRequest{
		UserID: operatorID,
		Amount: 100.004,
	})

	assert.NoError(t, err)
}

func TestRecordCashCollection_StatusGuard(t *testing.T) {
	svc, _, _ := newTestService(confirmedBooking(), afterStart)

	_, err := svc.RecordCashCollection(context.Background(), 77, &models.RecordCashCollectionRequest{
		UserID: operatorID,
		Amount: 100,
	})

	assert.ErrorIs(t, err, ErrNotDelivered)
}

func TestGetDelivery(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusServiceDelivered
	svc, _, delivered := newTestService(booking, afterStart)
	delivered.delivery = &domain.ServiceDelivery{ID: 1, BookingID: 77, DeliveredAt: afterStart, DeliveredBy: operatorID}
	delivered.collections = []*domain.CashCollection{
		{ID: 1, BookingID: 77, ProviderID: 2, Amount: 100, CollectedAt: afterStart},
	}

	t.Run("customer can read", func(t *testing.T) {
		resp, collections, err := svc.GetDelivery(context.Background(), 77, customerID)

		require.NoError(t, err)
		assert.Equal(t, int64(77), resp.BookingID)
		require.Len(t, collections.Collections, 1)
		assert.Equal(t, 100.0, collections.Collections[0].Amount)
	})

	t.Run("operator can read", func(t *testing.T) {
		_, _, err := svc.GetDelivery(context.Background(), 77, operatorID)
		assert.NoError(t, err)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, _, err := svc.GetDelivery(context.Background(), 77, strangerID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("no delivery record", func(t *testing.T) {
		delivered.delivery = nil
		_, _, err := svc.GetDelivery(context.Background(), 77, customerID)
		assert.ErrorIs(t, err, ErrDeliveryNotFound)
	})
}
