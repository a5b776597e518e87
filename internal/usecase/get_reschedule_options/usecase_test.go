package get_reschedule_options

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// 2026-03-02 понедельник
var (
	testNow     = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	mondayDate  = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesdayDate = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeBookingRepo struct {
	booking         *domain.Booking
	rescheduleCount int
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.booking, nil
}

func (r *fakeBookingRepo) CountReschedules(_ context.Context, _ int64) (int, error) {
	return r.rescheduleCount, nil
}

type fakeSlotRepo struct {
	slots []*domain.BookingSlot
}

func (r *fakeSlotRepo) GetByServiceAndDateRange(_ context.Context, serviceID int64, _, _ time.Time) ([]*domain.BookingSlot, error) {
	result := make([]*domain.BookingSlot, 0)
	for _, s := range r.slots {
		if s.ServiceID == serviceID {
			result = append(result, s)
		}
	}
	return result, nil
}

type fakeSlotGenerator struct {
	repo      *fakeSlotRepo
	generated []*domain.BookingSlot
	err       error
	calls     int
}

func (g *fakeSlotGenerator) MaterializeRange(_ context.Context, _ int64, _, _ time.Time) error {
	g.calls++
	if g.err != nil {
		return g.err
	}
	g.repo.slots = append(g.repo.slots, g.generated...)
	g.generated = nil
	return nil
}

type fakeCatalog struct {
	service  *catalogClient.Service
	provider *catalogClient.Provider
	degraded bool
}

func (c *fakeCatalog) GetServiceWithGracefulDegradation(_ context.Context, serviceID int64) (*catalogClient.Service, error) {
	if c.degraded {
		return nil, catalogClient.ErrServiceDegraded
	}
	if c.service == nil || c.service.ID != serviceID {
		return nil, catalogClient.ErrServiceNotFound
	}
	return c.service, nil
}

func (c *fakeCatalog) GetProvider(_ context.Context, providerID int64) (*catalogClient.Provider, error) {
	if c.provider == nil || c.provider.ID != providerID {
		return nil, catalogClient.ErrProviderNotFound
	}
	return c.provider, nil
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:          7,
		CustomerID:  10,
		ServiceID:   1,
		ProviderID:  2,
		SlotID:      ptr.Ptr(int64(1)),
		BookingDate: mondayDate,
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
		Status:      domain.StatusConfirmed,
		Tier:        domain.TierNormal,
		BasePrice:   100,
		TotalAmount: 100,
	}
}

func slot(id int64, date time.Time, start, end string, tier domain.PricingTier) *domain.BookingSlot {
	return &domain.BookingSlot{
		ID:              id,
		ServiceID:       1,
		SlotDate:        date,
		StartTime:       types.TimeString(start),
		EndTime:         types.TimeString(end),
		Tier:            tier,
		MaxReservations: 2,
		IsAvailable:     true,
	}
}

func newTestUseCase(bookings *fakeBookingRepo, slots *fakeSlotRepo, catalog *fakeCatalog) *UseCase {
	return newTestUseCaseWithGenerator(bookings, slots, &fakeSlotGenerator{repo: slots}, catalog)
}

func newTestUseCaseWithGenerator(bookings *fakeBookingRepo, slots *fakeSlotRepo, gen *fakeSlotGenerator, catalog *fakeCatalog) *UseCase {
	return NewUseCase(bookings, slots, gen, catalog, nopLogger{}).
		WithTimeProvider(&fixedTime{now: testNow})
}

func defaultCatalog() *fakeCatalog {
	return &fakeCatalog{
		service: &catalogClient.Service{ID: 1, ProviderID: 2, Name: "Мойка окон", BasePrice: 100, IsActive: true},
		provider: &catalogClient.Provider{
			ID: 2, Name: "Чистый дом", IsActive: true, OperatorIDs: []int64{50},
		},
	}
}

func TestExecute_OptionsWithPriceDifference(t *testing.T) {
	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	slots := &fakeSlotRepo{slots: []*domain.BookingSlot{
		slot(1, mondayDate, "10:00", "11:00", domain.TierNormal),   // текущий слот брони
		slot(2, tuesdayDate, "12:00", "13:00", domain.TierNormal),  // без доплаты
		slot(3, tuesdayDate, "19:00", "20:00", domain.TierExpress), // +50%
	}}
	uc := newTestUseCase(bookings, slots, defaultCatalog())

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.BookingID)
	assert.Equal(t, domain.MaxReschedules, resp.RemainingReschedules)

	// Текущий слот бронирования в варианты не попадает
	require.Len(t, resp.Options, 2)

	assert.Equal(t, int64(2), resp.Options[0].SlotID)
	assert.Equal(t, 100.0, resp.Options[0].TotalAmount)
	assert.Equal(t, 0.0, resp.Options[0].PriceDifference)

	assert.Equal(t, int64(3), resp.Options[1].SlotID)
	assert.Equal(t, 150.0, resp.Options[1].TotalAmount)
	assert.Equal(t, 50.0, resp.Options[1].PriceDifference)
	assert.Equal(t, 2, resp.Options[1].AvailableSpots)
}

func TestExecute_FullAndElapsedSlotsFiltered(t *testing.T) {
	full := slot(4, tuesdayDate, "12:00", "13:00", domain.TierNormal)
	full.CurrentReservations = full.MaxReservations

	closed := slot(5, tuesdayDate, "14:00", "15:00", domain.TierNormal)
	closed.IsAvailable = false

	elapsed := slot(6, mondayDate, "06:00", "07:00", domain.TierEmergency)

	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	slots := &fakeSlotRepo{slots: []*domain.BookingSlot{full, closed, elapsed}}
	uc := newTestUseCase(bookings, slots, defaultCatalog())

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	assert.Empty(t, resp.Options)
}

func TestExecute_SlotPriceOverride(t *testing.T) {
	override := slot(2, tuesdayDate, "12:00", "13:00", domain.TierNormal)
	override.BasePriceOverride = ptr.Ptr(250.0)

	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	slots := &fakeSlotRepo{slots: []*domain.BookingSlot{override}}
	uc := newTestUseCase(bookings, slots, defaultCatalog())

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, 250.0, resp.Options[0].TotalAmount)
	assert.Equal(t, 150.0, resp.Options[0].PriceDifference)
}

func TestExecute_DiscountPreserved(t *testing.T) {
	booking := confirmedBooking()
	booking.Discount = 20
	booking.TotalAmount = 80

	bookings := &fakeBookingRepo{booking: booking}
	slots := &fakeSlotRepo{slots: []*domain.BookingSlot{
		slot(2, tuesdayDate, "12:00", "13:00", domain.TierNormal),
	}}
	uc := newTestUseCase(bookings, slots, defaultCatalog())

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, 80.0, resp.Options[0].TotalAmount)
	assert.Equal(t, 0.0, resp.Options[0].PriceDifference)
}

func TestExecute_CatalogDegradedUsesDenormalizedPrice(t *testing.T) {
	catalog := defaultCatalog()
	catalog.degraded = true

	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	slots := &fakeSlotRepo{slots: []*domain.BookingSlot{
		slot(2, tuesdayDate, "12:00", "13:00", domain.TierNormal),
	}}
	uc := newTestUseCase(bookings, slots, catalog)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, 100.0, resp.Options[0].TotalAmount)
}

func TestExecute_MaterializesHorizonOnDemand(t *testing.T) {
	// Слоты еще не материализованы ни одним запросом на дату:
	// подбор сам генерирует их на весь горизонт
	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	slots := &fakeSlotRepo{}
	gen := &fakeSlotGenerator{
		repo:      slots,
		generated: []*domain.BookingSlot{slot(2, tuesdayDate, "12:00", "13:00", domain.TierNormal)},
	}
	uc := newTestUseCaseWithGenerator(bookings, slots, gen, defaultCatalog())

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	require.Len(t, resp.Options, 1)
	assert.Equal(t, int64(2), resp.Options[0].SlotID)
}

func TestExecute_GenerationFailureDoesNotBlockOptions(t *testing.T) {
	bookings := &fakeBookingRepo{booking: confirmedBooking()}
	slots := &fakeSlotRepo{slots: []*domain.BookingSlot{
		slot(2, tuesdayDate, "12:00", "13:00", domain.TierNormal),
	}}
	gen := &fakeSlotGenerator{repo: slots, err: assert.AnError}
	uc := newTestUseCaseWithGenerator(bookings, slots, gen, defaultCatalog())

	resp, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	require.NoError(t, err)
	require.Len(t, resp.Options, 1)
}

func TestExecute_RescheduleLimit(t *testing.T) {
	bookings := &fakeBookingRepo{booking: confirmedBooking(), rescheduleCount: domain.MaxReschedules}
	uc := newTestUseCase(bookings, &fakeSlotRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	assert.ErrorIs(t, err, ErrRescheduleLimitExceeded)
}

func TestExecute_TerminalStatus(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusCancelled

	bookings := &fakeBookingRepo{booking: booking}
	uc := newTestUseCase(bookings, &fakeSlotRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 7})

	assert.ErrorIs(t, err, ErrCannotReschedule)
}

func TestExecute_AccessControl(t *testing.T) {
	t.Run("operator has access", func(t *testing.T) {
		bookings := &fakeBookingRepo{booking: confirmedBooking()}
		uc := newTestUseCase(bookings, &fakeSlotRepo{}, defaultCatalog())

		resp, err := uc.Execute(context.Background(), &Request{UserID: 50, BookingID: 7})

		require.NoError(t, err)
		assert.Empty(t, resp.Options)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		bookings := &fakeBookingRepo{booking: confirmedBooking()}
		uc := newTestUseCase(bookings, &fakeSlotRepo{}, defaultCatalog())

		_, err := uc.Execute(context.Background(), &Request{UserID: 999, BookingID: 7})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestExecute_BookingNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), &Request{UserID: 10, BookingID: 404})

	assert.ErrorIs(t, err, ErrBookingNotFound)
}
