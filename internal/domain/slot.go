package domain

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// BookingSlot конкретный датированный слот, доступный для резервации.
// Натуральный ключ: (service_id, slot_date, start_time) - генерация слотов
// идемпотентна по этому ключу.
type BookingSlot struct {
	ID         int64
	ServiceID  int64
	ProviderID int64

	SlotDate  time.Time
	StartTime types.TimeString
	EndTime   types.TimeString

	IsAvailable bool

	// Счетчики резерваций. Инвариант: 0 <= CurrentReservations <= MaxReservations.
	// Мутируются только атомарными Reserve/Release в репозитории слотов.
	MaxReservations     int
	CurrentReservations int

	Tier           PricingTier
	RushFeePercent float64

	// Переопределение базовой цены услуги для этого слота (peak-окна)
	BasePriceOverride *float64

	ProviderNote *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFullyBooked производное свойство, никогда не хранится отдельным флагом
func (s *BookingSlot) IsFullyBooked() bool {
	return s.CurrentReservations >= s.MaxReservations
}

// HasCapacity returns true if the slot can accept one more reservation
func (s *BookingSlot) HasCapacity() bool {
	return s.IsAvailable && !s.IsFullyBooked()
}

// IsElapsed проверяет, что слот уже прошел относительно now.
// Слот считается прошедшим, когда его время окончания уже наступило.
func (s *BookingSlot) IsElapsed(now time.Time) (bool, error) {
	end, err := s.EndTime.OnDate(s.SlotDate)
	if err != nil {
		return false, err
	}
	return !end.After(now), nil
}

// EffectiveBasePrice возвращает базовую цену слота: переопределение,
// если оно задано, иначе базовую цену услуги из каталога
func (s *BookingSlot) EffectiveBasePrice(catalogBasePrice float64) float64 {
	if s.BasePriceOverride != nil {
		return *s.BasePriceOverride
	}
	return catalogBasePrice
}
