package get_available_slots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// 2026-03-02 понедельник
var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeSlotRepo struct {
	nextID  int64
	slots   map[string]*domain.BookingSlot
	created int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{nextID: 1, slots: make(map[string]*domain.BookingSlot)}
}

func slotKey(serviceID int64, date time.Time, start types.TimeString) string {
	return fmt.Sprintf("%d/%s/%s", serviceID, date.Format(domain.DateFormat), start)
}

func (r *fakeSlotRepo) CreateIfAbsent(_ context.Context, s *domain.BookingSlot) error {
	key := slotKey(s.ServiceID, s.SlotDate, s.StartTime)
	if _, ok := r.slots[key]; ok {
		return nil
	}
	stored := *s
	stored.ID = r.nextID
	r.nextID++
	r.slots[key] = &stored
	r.created++
	return nil
}

func (r *fakeSlotRepo) GetByServiceAndDate(_ context.Context, serviceID int64, date time.Time) ([]*domain.BookingSlot, error) {
	result := make([]*domain.BookingSlot, 0)
	for _, s := range r.slots {
		if s.ServiceID == serviceID && s.SlotDate.Equal(date) {
			result = append(result, s)
		}
	}
	return result, nil
}

type fakeAvailabilityRepo struct {
	providerWindow *domain.ProviderAvailability
	serviceWindows []*domain.ServiceTimeSlot
}

func (r *fakeAvailabilityRepo) GetActiveWindow(_ context.Context, _ int64, _ int) (*domain.ProviderAvailability, error) {
	if r.providerWindow == nil {
		return nil, availabilityRepo.ErrAvailabilityNotFound
	}
	return r.providerWindow, nil
}

func (r *fakeAvailabilityRepo) GetServiceWindows(_ context.Context, _ int64, _ int) ([]*domain.ServiceTimeSlot, error) {
	return r.serviceWindows, nil
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

func newUseCase(slots *fakeSlotRepo, avail *fakeAvailabilityRepo, catalog *fakeCatalog, now time.Time) *UseCase {
	return NewUseCase(slots, avail, catalog, nopLogger{}).
		WithTimeProvider(&fixedTime{now: now})
}

func TestExecute_GeneratesSlotsFromProviderWindow(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		providerWindow: &domain.ProviderAvailability{
			ProviderID: 20,
			Weekday:    int(testDate.Weekday()),
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("13:00"),
			BreakStart: ptr.Ptr(types.TimeString("11:00")),
			BreakEnd:   ptr.Ptr(types.TimeString("12:00")),
			IsActive:   true,
		},
	}
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// 09-13 с шагом час, слот 11:00 выпадает из-за перерыва
	require.Len(t, resp.Slots, 3)
	starts := []string{resp.Slots[0].StartTime.String(), resp.Slots[1].StartTime.String(), resp.Slots[2].StartTime.String()}
	assert.ElementsMatch(t, []string{"09:00", "10:00", "12:00"}, starts)

	assert.Equal(t, int64(20), resp.ProviderID)
	assert.Equal(t, 3, slots.created)

	for _, s := range resp.Slots {
		require.NotNil(t, s.ID)
		assert.Equal(t, 1, s.TotalSpots)
		assert.Equal(t, 1, s.AvailableSpots)
		// Понедельник 09-13 - рабочие часы без надбавки
		assert.Equal(t, string(domain.TierNormal), s.Tier)
		assert.InDelta(t, 100, s.BasePrice, 0.001)
		assert.InDelta(t, 0, s.RushFee, 0.001)
		assert.InDelta(t, 100, s.TotalPrice, 0.001)
	}
}

func TestExecute_GenerationIsIdempotent(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		providerWindow: &domain.ProviderAvailability{
			ProviderID: 20,
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("11:00"),
			IsActive:   true,
		},
	}
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	req := &Request{UserID: 1, ServiceID: 10, Date: testDate}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Slots, 2)

	// Имитируем резервацию между запросами
	for _, s := range slots.slots {
		if s.StartTime.String() == "09:00" {
			s.CurrentReservations = 1
		}
	}

	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Повторная генерация не создает дубликатов и не сбрасывает счетчики
	assert.Equal(t, 2, slots.created)
	require.Len(t, second.Slots, 1)
	assert.Equal(t, "10:00", second.Slots[0].StartTime.String())
}

func TestExecute_BrowseOnlyDoesNotMaterialize(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		providerWindow: &domain.ProviderAvailability{
			ProviderID: 20,
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("11:00"),
			IsActive:   true,
		},
	}
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate, BrowseOnly: true})
	require.NoError(t, err)

	assert.Equal(t, 0, slots.created)
	require.Len(t, resp.Slots, 2)
	for _, s := range resp.Slots {
		assert.Nil(t, s.ID)
	}
}

func TestExecute_ElapsedSlotsFiltered(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		providerWindow: &domain.ProviderAvailability{
			ProviderID: 20,
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("13:00"),
			IsActive:   true,
		},
	}
	// Запрос в середине дня: слоты 09 и 10 уже закончились
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "11:00", resp.Slots[0].StartTime.String())
	assert.Equal(t, "12:00", resp.Slots[1].StartTime.String())
}

func TestExecute_ServiceWindowsReplaceProviderWindow(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		// Рабочее окно есть, но окна услуги должны его полностью заместить
		providerWindow: &domain.ProviderAvailability{
			ProviderID: 20,
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("18:00"),
			IsActive:   true,
		},
		serviceWindows: []*domain.ServiceTimeSlot{
			{
				ServiceID:     10,
				Weekday:       int(testDate.Weekday()),
				StartTime:     types.TimeString("19:00"),
				EndTime:       types.TimeString("21:00"),
				MaxBookings:   3,
				IsPeak:        true,
				PriceOverride: ptr.Ptr(250.0),
			},
		},
	}
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// Окно услуги дает один слот на всю длительность, без часовой нарезки
	require.Len(t, resp.Slots, 1)
	s := resp.Slots[0]
	assert.Equal(t, "19:00", s.StartTime.String())
	assert.Equal(t, "21:00", s.EndTime.String())
	assert.Equal(t, 3, s.TotalSpots)
	// Peak-окно несет собственную цену и не категоризируется
	assert.Equal(t, string(domain.TierNormal), s.Tier)
	assert.InDelta(t, 250, s.BasePrice, 0.001)
	assert.InDelta(t, 0, s.RushFee, 0.001)
	assert.InDelta(t, 250, s.TotalPrice, 0.001)
}

func TestExecute_ServiceWindowEmitsSingleSlotPerEntry(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		serviceWindows: []*domain.ServiceTimeSlot{
			{
				ServiceID:   10,
				Weekday:     int(testDate.Weekday()),
				StartTime:   types.TimeString("10:00"),
				EndTime:     types.TimeString("13:00"),
				MaxBookings: 5,
			},
		},
	}
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	// Трехчасовое окно с емкостью 5 - это один слот на 5 мест,
	// а не три часовых слота по 5 мест
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, 1, slots.created)
	assert.Equal(t, "10:00", resp.Slots[0].StartTime.String())
	assert.Equal(t, "13:00", resp.Slots[0].EndTime.String())
	assert.Equal(t, 5, resp.Slots[0].TotalSpots)
	assert.Equal(t, 5, resp.Slots[0].AvailableSpots)
	assert.Equal(t, string(domain.TierNormal), resp.Slots[0].Tier)
}

func TestMaterializeRange(t *testing.T) {
	slots := newFakeSlotRepo()
	avail := &fakeAvailabilityRepo{
		providerWindow: &domain.ProviderAvailability{
			ProviderID: 20,
			StartTime:  types.TimeString("09:00"),
			EndTime:    types.TimeString("11:00"),
			IsActive:   true,
		},
	}
	uc := newUseCase(slots, avail, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	from := testDate
	to := testDate.AddDate(0, 0, 1)

	require.NoError(t, uc.MaterializeRange(context.Background(), 10, from, to))
	// Два дня по два часовых слота
	assert.Equal(t, 4, slots.created)

	// Повторная материализация не трогает существующие слоты
	require.NoError(t, uc.MaterializeRange(context.Background(), 10, from, to))
	assert.Equal(t, 4, slots.created)
}

func TestMaterializeRange_InactiveService(t *testing.T) {
	svc := activeService()
	svc.IsActive = false
	uc := newUseCase(newFakeSlotRepo(), &fakeAvailabilityRepo{}, &fakeCatalog{service: svc},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	err := uc.MaterializeRange(context.Background(), 10, testDate, testDate)
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_NoScheduleReturnsEmpty(t *testing.T) {
	slots := newFakeSlotRepo()
	uc := newUseCase(slots, &fakeAvailabilityRepo{}, &fakeCatalog{service: activeService()},
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
	require.NoError(t, err)

	assert.Empty(t, resp.Slots)
	assert.Equal(t, 0, slots.created)
}

func TestExecute_ServiceErrors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("service not found", func(t *testing.T) {
		uc := newUseCase(newFakeSlotRepo(), &fakeAvailabilityRepo{},
			&fakeCatalog{err: catalogClient.ErrServiceNotFound}, now)

		_, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("service inactive", func(t *testing.T) {
		svc := activeService()
		svc.IsActive = false
		uc := newUseCase(newFakeSlotRepo(), &fakeAvailabilityRepo{}, &fakeCatalog{service: svc}, now)

		_, err := uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 10, Date: testDate})
		assert.ErrorIs(t, err, ErrServiceInactive)
	})
}

func TestExecute_DateValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc := newUseCase(newFakeSlotRepo(), &fakeAvailabilityRepo{}, &fakeCatalog{service: activeService()}, now)

	t.Run("past date", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			UserID: 1, ServiceID: 10,
			Date: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("beyond booking horizon", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			UserID: 1, ServiceID: 10,
			Date: now.AddDate(0, 0, domain.AdvanceBookingDays+1),
		})
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("horizon boundary is inclusive", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			UserID: 1, ServiceID: 10,
			Date: now.AddDate(0, 0, domain.AdvanceBookingDays),
		})
		assert.NoError(t, err)
	})
}

func TestWalkWindow(t *testing.T) {
	t.Run("partial slot at window end is dropped", func(t *testing.T) {
		starts, err := walkWindow(types.TimeString("09:00"), types.TimeString("10:30"), 60)
		require.NoError(t, err)
		require.Len(t, starts, 1)
		assert.Equal(t, "09:00", starts[0].String())
	})

	t.Run("window ending at midnight does not loop", func(t *testing.T) {
		starts, err := walkWindow(types.TimeString("22:00"), types.TimeString("23:59"), 60)
		require.NoError(t, err)
		require.Len(t, starts, 1)
		assert.Equal(t, "22:00", starts[0].String())
	})

	t.Run("empty window", func(t *testing.T) {
		starts, err := walkWindow(types.TimeString("10:00"), types.TimeString("10:00"), 60)
		require.NoError(t, err)
		assert.Empty(t, starts)
	})
}
