package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/slot"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

var (
	// 2026-03-02 понедельник, 2026-03-07 суббота
	oldDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	newDate = time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
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

type fakeBookingRepo struct {
	booking        *domain.Booking
	reschedules    []*domain.RescheduleEntry
	appliedParams  *bookingRepo.RescheduleParams
	rescheduleDone bool
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.booking, nil
}

func (r *fakeBookingRepo) ApplyReschedule(_ context.Context, _ int64, params bookingRepo.RescheduleParams) error {
	r.appliedParams = &params
	r.rescheduleDone = true
	return nil
}

func (r *fakeBookingRepo) AppendRescheduleEntry(_ context.Context, entry *domain.RescheduleEntry) (*domain.RescheduleEntry, error) {
	stored := *entry
	stored.ID = int64(len(r.reschedules) + 1)
	r.reschedules = append(r.reschedules, &stored)
	return &stored, nil
}

func (r *fakeBookingRepo) CountReschedules(_ context.Context, _ int64) (int, error) {
	return len(r.reschedules), nil
}

func (r *fakeBookingRepo) GetRescheduleHistory(_ context.Context, _ int64) ([]*domain.RescheduleEntry, error) {
	return r.reschedules, nil
}

type fakeSlotRepo struct {
	slots    map[int64]*domain.BookingSlot
	reserved []int64
	released []int64
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.BookingSlot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	return s, nil
}

func (r *fakeSlotRepo) Reserve(_ context.Context, id int64) error {
	s, ok := r.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if s.CurrentReservations >= s.MaxReservations {
		return slotRepo.ErrSlotFull
	}
	s.CurrentReservations++
	r.reserved = append(r.reserved, id)
	return nil
}

func (r *fakeSlotRepo) Release(_ context.Context, id int64) error {
	s, ok := r.slots[id]
	if !ok || s.CurrentReservations == 0 {
		return slotRepo.ErrNothingReleased
	}
	s.CurrentReservations--
	r.released = append(r.released, id)
	return nil
}

type fakeCatalog struct {
	service    *catalogClient.Service
	serviceErr error
	provider   *catalogClient.Provider
}

func (c *fakeCatalog) GetServiceWithGracefulDegradation(_ context.Context, _ int64) (*catalogClient.Service, error) {
	if c.serviceErr != nil {
		return nil, c.serviceErr
	}
	return c.service, nil
}

func (c *fakeCatalog) GetProvider(_ context.Context, _ int64) (*catalogClient.Provider, error) {
	if c.provider == nil {
		return nil, catalogClient.ErrProviderNotFound
	}
	return c.provider, nil
}

// Бронирование pending на слоте 1 (будний normal), стоимость 100
func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          7,
		CustomerID:  1,
		ServiceID:   10,
		ProviderID:  20,
		SlotID:      ptr.Ptr(int64(1)),
		BookingDate: oldDate,
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
		Status:      domain.StatusPending,
		Step:        domain.StepCreated,
		Tier:        domain.TierNormal,
		BasePrice:   100,
		RushFee:     0,
		Discount:    0,
		TotalAmount: 100,
	}
}

func testSlots() map[int64]*domain.BookingSlot {
	return map[int64]*domain.BookingSlot{
		1: {
			ID: 1, ServiceID: 10, ProviderID: 20,
			SlotDate:  oldDate,
			StartTime: types.TimeString("10:00"), EndTime: types.TimeString("11:00"),
			IsAvailable: true, MaxReservations: 1, CurrentReservations: 1,
			Tier: domain.TierNormal,
		},
		// Субботний вечер: express, надбавка 50%
		2: {
			ID: 2, ServiceID: 10, ProviderID: 20,
			SlotDate:  newDate,
			StartTime: types.TimeString("18:00"), EndTime: types.TimeString("19:00"),
			IsAvailable: true, MaxReservations: 1, CurrentReservations: 0,
			Tier: domain.TierExpress,
		},
	}
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		service:  &catalogClient.Service{ID: 10, ProviderID: 20, BasePrice: 100, IsActive: true},
		provider: &catalogClient.Provider{ID: 20, OperatorIDs: []int64{50}},
	}
}

func newTestUseCase(bookings *fakeBookingRepo, slots *fakeSlotRepo, catalog *fakeCatalog) *UseCase {
	return NewUseCase(bookings, slots, catalog, inlineTxManager{}, nopLogger{}).
		WithTimeProvider(&fixedTime{now: testNow})
}

func validRequest() *Request {
	return &Request{UserID: 1, BookingID: 7, NewSlotID: 2, Reason: "клиент попросил перенести"}
}

func TestExecute_Success(t *testing.T) {
	bookings := &fakeBookingRepo{booking: pendingBooking()}
	slots := &fakeSlotRepo{slots: testSlots()}
	uc := newTestUseCase(bookings, slots, testCatalog())

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Новый слот занят, старый освобожден
	assert.Equal(t, []int64{2}, slots.reserved)
	assert.Equal(t, []int64{1}, slots.released)

	// Цена пересчитана по категории нового слота, разница со знаком
	assert.Equal(t, string(domain.TierExpress), resp.Tier)
	assert.InDelta(t, 100, resp.BasePrice, 0.001)
	assert.InDelta(t, 50, resp.RushFee, 0.001)
	assert.InDelta(t, 150, resp.TotalAmount, 0.001)
	assert.InDelta(t, 50, resp.PriceDifference, 0.001)
	assert.Equal(t, domain.MaxReschedules-1, resp.RemainingReschedules)

	require.NotNil(t, bookings.appliedParams)
	assert.Equal(t, int64(2), bookings.appliedParams.SlotID)
	assert.Equal(t, "18:00", bookings.appliedParams.StartTime.String())

	// Запись истории содержит старое и новое расписание
	require.Len(t, bookings.reschedules, 1)
	entry := bookings.reschedules[0]
	assert.Equal(t, "10:00", entry.OldStartTime.String())
	assert.Equal(t, "18:00", entry.NewStartTime.String())
	assert.InDelta(t, 50, entry.PriceDifference, 0.001)
}

func TestExecute_NormalToUrgentRepricing(t *testing.T) {
	booking := pendingBooking()
	booking.BasePrice = 1000
	booking.TotalAmount = 1000
	bookings := &fakeBookingRepo{booking: booking}

	slots := &fakeSlotRepo{slots: testSlots()}
	// Будний поздний вечер: urgent, надбавка 75%
	slots.slots[3] = &domain.BookingSlot{
		ID: 3, ServiceID: 10, ProviderID: 20,
		SlotDate:  oldDate.AddDate(0, 0, 1),
		StartTime: types.TimeString("21:00"), EndTime: types.TimeString("22:00"),
		IsAvailable: true, MaxReservations: 1,
		Tier: domain.TierUrgent,
	}

	catalog := testCatalog()
	catalog.service.BasePrice = 1000
	uc := newTestUseCase(bookings, slots, catalog)

	req := validRequest()
	req.NewSlotID = 3
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(domain.TierUrgent), resp.Tier)
	assert.InDelta(t, 1000, resp.BasePrice, 0.001)
	assert.InDelta(t, 750, resp.RushFee, 0.001)
	assert.InDelta(t, 1750, resp.TotalAmount, 0.001)
	assert.InDelta(t, 750, resp.PriceDifference, 0.001)

	require.Len(t, bookings.reschedules, 1)
	assert.InDelta(t, 750, bookings.reschedules[0].PriceDifference, 0.001)
}

func TestExecute_DiscountPreserved(t *testing.T) {
	b := pendingBooking()
	b.Discount = 20
	b.TotalAmount = 80
	bookings := &fakeBookingRepo{booking: b}
	uc := newTestUseCase(bookings, &fakeSlotRepo{slots: testSlots()}, testCatalog())

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// total = 100 + 50 - 20, разница против старых 80
	assert.InDelta(t, 130, resp.TotalAmount, 0.001)
	assert.InDelta(t, 50, resp.PriceDifference, 0.001)
}

func TestExecute_NegativePriceDifference(t *testing.T) {
	b := pendingBooking()
	b.Tier = domain.TierExpress
	b.RushFee = 50
	b.TotalAmount = 150

	slots := testSlots()
	slots[2].Tier = domain.TierNormal

	bookings := &fakeBookingRepo{booking: b}
	uc := newTestUseCase(bookings, &fakeSlotRepo{slots: slots}, testCatalog())

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.InDelta(t, 100, resp.TotalAmount, 0.001)
	assert.InDelta(t, -50, resp.PriceDifference, 0.001)
}

func TestExecute_CatalogDegradedFallsBackToDenormalizedPrice(t *testing.T) {
	catalog := testCatalog()
	catalog.serviceErr = catalogClient.ErrServiceDegraded

	bookings := &fakeBookingRepo{booking: pendingBooking()}
	uc := newTestUseCase(bookings, &fakeSlotRepo{slots: testSlots()}, catalog)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// База берется из денормализованной цены бронирования
	assert.InDelta(t, 100, resp.BasePrice, 0.001)
	assert.InDelta(t, 150, resp.TotalAmount, 0.001)
}

func TestExecute_RescheduleLimit(t *testing.T) {
	bookings := &fakeBookingRepo{booking: pendingBooking()}
	for i := 0; i < domain.MaxReschedules; i++ {
		bookings.reschedules = append(bookings.reschedules, &domain.RescheduleEntry{BookingID: 7})
	}
	slots := &fakeSlotRepo{slots: testSlots()}
	uc := newTestUseCase(bookings, slots, testCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrRescheduleLimitExceeded)
	assert.Empty(t, slots.reserved)
}

func TestExecute_SameSlot(t *testing.T) {
	bookings := &fakeBookingRepo{booking: pendingBooking()}
	uc := newTestUseCase(bookings, &fakeSlotRepo{slots: testSlots()}, testCatalog())

	req := validRequest()
	req.NewSlotID = 1
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSameSlot)
}

func TestExecute_NewSlotFull(t *testing.T) {
	slots := testSlots()
	slots[2].CurrentReservations = 1

	bookings := &fakeBookingRepo{booking: pendingBooking()}
	repo := &fakeSlotRepo{slots: slots}
	uc := newTestUseCase(bookings, repo, testCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	// Старый слот не освобождается при неудачной резервации нового
	assert.Empty(t, repo.released)
	assert.False(t, bookings.rescheduleDone)
}

func TestExecute_ServiceMismatch(t *testing.T) {
	slots := testSlots()
	slots[2].ServiceID = 99

	uc := newTestUseCase(&fakeBookingRepo{booking: pendingBooking()}, &fakeSlotRepo{slots: slots}, testCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceMismatch)
}

func TestExecute_CannotRescheduleTerminalStatus(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusCompleted, domain.StatusRejected} {
		b := pendingBooking()
		b.Status = status
		uc := newTestUseCase(&fakeBookingRepo{booking: b}, &fakeSlotRepo{slots: testSlots()}, testCatalog())

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrCannotReschedule, "status=%s", status)
	}
}

func TestExecute_AccessControl(t *testing.T) {
	t.Run("stranger denied", func(t *testing.T) {
		uc := newTestUseCase(&fakeBookingRepo{booking: pendingBooking()}, &fakeSlotRepo{slots: testSlots()}, testCatalog())

		req := validRequest()
		req.UserID = 999
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("provider operator allowed", func(t *testing.T) {
		bookings := &fakeBookingRepo{booking: pendingBooking()}
		uc := newTestUseCase(bookings, &fakeSlotRepo{slots: testSlots()}, testCatalog())

		req := validRequest()
		req.UserID = 50
		_, err := uc.Execute(context.Background(), req)
		assert.NoError(t, err)
	})
}

func TestExecute_MissingReason(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{booking: pendingBooking()}, &fakeSlotRepo{slots: testSlots()}, testCatalog())

	req := validRequest()
	req.Reason = "  "
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetHistory(t *testing.T) {
	bookings := &fakeBookingRepo{booking: pendingBooking()}
	bookings.reschedules = []*domain.RescheduleEntry{
		{ID: 1, BookingID: 7, Reason: "перенос", OldDate: oldDate, NewDate: newDate, PriceDifference: 50},
	}
	uc := newTestUseCase(bookings, &fakeSlotRepo{slots: testSlots()}, testCatalog())

	resp, err := uc.GetHistory(context.Background(), 7, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.BookingID)
	require.Len(t, resp.Entries, 1)
	assert.InDelta(t, 50, resp.Entries[0].PriceDifference, 0.001)

	_, err = uc.GetHistory(context.Background(), 7, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
