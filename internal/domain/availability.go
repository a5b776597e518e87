package domain

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// ErrInvalidAvailability возвращается при нарушении инвариантов рабочего окна
var ErrInvalidAvailability = errors.New("domain: invalid availability window")

// ProviderAvailability еженедельное рабочее окно исполнителя на день недели.
// Read-only для планировщика: создается и меняется только конфигурацией исполнителя.
type ProviderAvailability struct {
	ID         int64
	ProviderID int64

	// День недели: 0 = воскресенье ... 6 = суббота (как time.Weekday)
	Weekday int

	StartTime types.TimeString
	EndTime   types.TimeString

	// Необязательный перерыв. Инвариант: перерыв целиком внутри [StartTime, EndTime)
	BreakStart *types.TimeString
	BreakEnd   *types.TimeString

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasBreak returns true if the window defines a break
func (a *ProviderAvailability) HasBreak() bool {
	return a.BreakStart != nil && a.BreakEnd != nil
}

// Validate проверяет инварианты рабочего окна
func (a *ProviderAvailability) Validate() error {
	if a.Weekday < 0 || a.Weekday > 6 {
		return errors.New("domain: weekday must be in range 0-6")
	}
	if err := a.StartTime.Validate(); err != nil {
		return err
	}
	if err := a.EndTime.Validate(); err != nil {
		return err
	}
	if !a.StartTime.IsBefore(a.EndTime) {
		return ErrInvalidAvailability
	}

	if a.BreakStart != nil || a.BreakEnd != nil {
		// Перерыв задается только парой
		if a.BreakStart == nil || a.BreakEnd == nil {
			return ErrInvalidAvailability
		}
		if err := a.BreakStart.Validate(); err != nil {
			return err
		}
		if err := a.BreakEnd.Validate(); err != nil {
			return err
		}
		if !a.BreakStart.IsBefore(*a.BreakEnd) {
			return ErrInvalidAvailability
		}
		// Перерыв внутри рабочего окна
		if a.BreakStart.IsBefore(a.StartTime) || a.BreakEnd.IsAfter(a.EndTime) {
			return ErrInvalidAvailability
		}
	}

	return nil
}

// ServiceTimeSlot фиксированное еженедельное окно для конкретной услуги.
// Если для услуги и дня недели есть такие окна, они полностью замещают
// рабочие окна исполнителя при генерации слотов на этот день.
type ServiceTimeSlot struct {
	ID        int64
	ServiceID int64

	Weekday int

	StartTime types.TimeString
	EndTime   types.TimeString

	MaxBookings int

	// Peak-окно несет собственную цену и не категоризируется
	IsPeak        bool
	PriceOverride *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты окна услуги
func (s *ServiceTimeSlot) Validate() error {
	if s.Weekday < 0 || s.Weekday > 6 {
		return errors.New("domain: weekday must be in range 0-6")
	}
	if err := s.StartTime.Validate(); err != nil {
		return err
	}
	if err := s.EndTime.Validate(); err != nil {
		return err
	}
	if !s.StartTime.IsBefore(s.EndTime) {
		return ErrInvalidAvailability
	}
	if s.MaxBookings < 1 {
		return errors.New("domain: maxBookings must be positive")
	}
	if s.IsPeak && s.PriceOverride == nil {
		return errors.New("domain: peak window requires a price override")
	}
	return nil
}
