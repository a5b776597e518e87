package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	slotRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/slot"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// 2026-03-02 понедельник
var slotDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

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
	created *domain.Booking
}

func (r *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	stored := *b
	stored.ID = 100
	r.created = &stored
	return &stored, nil
}

type fakeSlotRepo struct {
	slot       *domain.BookingSlot
	reserveErr error
	reserved   int
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.BookingSlot, error) {
	if r.slot == nil || r.slot.ID != id {
		return nil, slotRepo.ErrSlotNotFound
	}
	return r.slot, nil
}

func (r *fakeSlotRepo) Reserve(_ context.Context, _ int64) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	r.reserved++
	return nil
}

type fakeCatalog struct {
	service *catalogClient.Service
	err     error
}

func (c *fakeCatalog) GetService(_ context.Context, _ int64) (*catalogClient.Service, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.service, nil
}

func activeService() *catalogClient.Service {
	return &catalogClient.Service{
		ID:         10,
		ProviderID: 20,
		Name:       "Чистка кондиционера",
		BasePrice:  100,
		IsActive:   true,
	}
}

func eveningSlot() *domain.BookingSlot {
	return &domain.BookingSlot{
		ID:              5,
		ServiceID:       10,
		ProviderID:      20,
		SlotDate:        slotDate,
		StartTime:       types.TimeString("19:00"),
		EndTime:         types.TimeString("20:00"),
		IsAvailable:     true,
		MaxReservations: 1,
		Tier:            domain.TierExpress,
		RushFeePercent:  domain.TierExpress.RushFeePercent(),
	}
}

func validRequest() *Request {
	return &Request{
		UserID:      1,
		ServiceID:   10,
		SlotID:      5,
		AddressLine: "ул. Ленина, 1",
		City:        "Москва",
	}
}

func newTestUseCase(bookings *fakeBookingRepo, slots *fakeSlotRepo, catalog *fakeCatalog) *UseCase {
	uc := NewUseCase(bookings, slots, catalog, inlineTxManager{}, nopLogger{})
	return uc.WithTimeProvider(&fixedTime{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)})
}

func TestExecute_Success(t *testing.T) {
	bookings := &fakeBookingRepo{}
	slots := &fakeSlotRepo{slot: eveningSlot()}
	uc := newTestUseCase(bookings, slots, &fakeCatalog{service: activeService()})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(100), resp.ID)
	assert.Equal(t, 1, slots.reserved)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.StepCreated), resp.Step)

	// Вечерний слот: express, надбавка 50% от базовой цены
	assert.Equal(t, string(domain.TierExpress), resp.Tier)
	assert.InDelta(t, 100, resp.BasePrice, 0.001)
	assert.InDelta(t, 50, resp.RushFee, 0.001)
	assert.InDelta(t, 150, resp.TotalAmount, 0.001)

	require.NotNil(t, resp.SlotID)
	assert.Equal(t, int64(5), *resp.SlotID)
	assert.Equal(t, "Чистка кондиционера", resp.ServiceName)

	// Дата и время берутся из слота, а не из запроса
	assert.True(t, resp.BookingDate.Equal(slotDate))
	assert.Equal(t, "19:00", resp.StartTime.String())
}

func TestExecute_SlotPriceOverride(t *testing.T) {
	bookings := &fakeBookingRepo{}
	slot := eveningSlot()
	override := 250.0
	slot.BasePriceOverride = &override
	slots := &fakeSlotRepo{slot: slot}
	uc := newTestUseCase(bookings, slots, &fakeCatalog{service: activeService()})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.InDelta(t, 250, resp.BasePrice, 0.001)
	assert.InDelta(t, 125, resp.RushFee, 0.001)
	assert.InDelta(t, 375, resp.TotalAmount, 0.001)
}

func TestExecute_SlotFull(t *testing.T) {
	bookings := &fakeBookingRepo{}
	slots := &fakeSlotRepo{slot: eveningSlot(), reserveErr: slotRepo.ErrSlotFull}
	uc := newTestUseCase(bookings, slots, &fakeCatalog{service: activeService()})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, bookings.created)
}

func TestExecute_SlotNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{}, &fakeCatalog{service: activeService()})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_ServiceMismatch(t *testing.T) {
	slot := eveningSlot()
	slot.ServiceID = 99
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{slot: slot}, &fakeCatalog{service: activeService()})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceMismatch)
}

func TestExecute_SlotInPast(t *testing.T) {
	bookings := &fakeBookingRepo{}
	slots := &fakeSlotRepo{slot: eveningSlot()}
	uc := NewUseCase(bookings, slots, &fakeCatalog{service: activeService()}, inlineTxManager{}, nopLogger{}).
		WithTimeProvider(&fixedTime{now: time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotInPast)
	assert.Equal(t, 0, slots.reserved)
}

func TestExecute_ServiceInactive(t *testing.T) {
	svc := activeService()
	svc.IsActive = false
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{slot: eveningSlot()}, &fakeCatalog{service: svc})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{slot: eveningSlot()}, &fakeCatalog{service: activeService()})

	t.Run("missing address", func(t *testing.T) {
		req := validRequest()
		req.AddressLine = ""
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing city", func(t *testing.T) {
		req := validRequest()
		req.City = ""
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-positive slot id", func(t *testing.T) {
		req := validRequest()
		req.SlotID = 0
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
