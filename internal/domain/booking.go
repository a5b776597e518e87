package domain

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending          BookingStatus = "pending"
	StatusConfirmed        BookingStatus = "confirmed"
	StatusRejected         BookingStatus = "rejected"
	StatusCancelled        BookingStatus = "cancelled"
	StatusServiceDelivered BookingStatus = "service_delivered"
	StatusCompleted        BookingStatus = "completed"

	// Системные статусы. Возникают только как побочный эффект протоколов
	// (оплата, подтверждение выполнения, спор) и никогда не выставляются
	// прямым запросом на смену статуса.
	StatusPaymentPending       BookingStatus = "payment_pending"
	StatusAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	StatusDisputed             BookingStatus = "disputed"
)

// allowedTransitions таблица разрешенных переходов статусов.
// Единственный источник правды для BookingLifecycle: любые guard-проверки
// в сервисах опираются на CanTransition, а не дублируют таблицу.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:              {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusPaymentPending:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed:            {StatusServiceDelivered, StatusRejected, StatusCancelled},
	StatusServiceDelivered:     {StatusCompleted, StatusDisputed, StatusCancelled},
	StatusAwaitingConfirmation: {StatusCompleted, StatusDisputed, StatusCancelled},
	StatusDisputed:             {StatusCompleted, StatusCancelled},
}

// CanTransition проверяет, разрешен ли переход из статуса from в статус to
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedNextStatuses возвращает список статусов, в которые разрешен переход.
// Используется для формирования понятных ошибок InvalidTransition.
func AllowedNextStatuses(from BookingStatus) []BookingStatus {
	return allowedTransitions[from]
}

// IsTerminal проверяет, что статус терминальный (переходы из него запрещены)
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// IsInternal проверяет, что статус системный и не может быть выставлен
// прямым запросом на смену статуса
func (s BookingStatus) IsInternal() bool {
	return s == StatusPaymentPending || s == StatusAwaitingConfirmation || s == StatusDisputed
}

// IsValid проверяет, что значение входит в закрытое множество статусов
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled,
		StatusServiceDelivered, StatusCompleted,
		StatusPaymentPending, StatusAwaitingConfirmation, StatusDisputed:
		return true
	}
	return false
}

// BookingStep UI-фаза бронирования. Информационное поле: бизнес-правила
// никогда не читают step, только status.
type BookingStep string

const (
	StepCreated          BookingStep = "created"
	StepAwaitingPayment  BookingStep = "awaiting_payment"
	StepPaymentConfirmed BookingStep = "payment_confirmed"
	StepInService        BookingStep = "in_service"
	StepDelivered        BookingStep = "delivered"
	StepClosed           BookingStep = "closed"
)

// Booking represents a customer's appointment for a service
type Booking struct {
	ID         int64
	CustomerID int64
	ServiceID  int64
	ProviderID int64

	// Ссылка на занятый слот. NULL, если слот освобожден (отмена)
	// или бронирование создано без резервации.
	SlotID *int64

	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString

	// Адрес выполнения услуги
	AddressLine string
	City        string
	PostalCode  *string

	Status BookingStatus
	Step   BookingStep

	// Ценообразование. Инвариант: TotalAmount = BasePrice + RushFee - Discount,
	// пересчитывается при каждом переносе.
	Tier        PricingTier
	BasePrice   float64
	RushFee     float64
	Discount    float64
	TotalAmount float64

	// Денормализованные данные услуги для истории
	ServiceName string

	Notes *string

	CancellationReason *string
	CancelledAt        *time.Time
	RejectionReason    *string
	RescheduleReason   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking is in an active (non-terminal) state
func (b *Booking) IsActive() bool {
	return !b.Status.IsTerminal()
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return CanTransition(b.Status, StatusCancelled)
}

// CanBeRescheduled returns true if the booking's status allows rescheduling
func (b *Booking) CanBeRescheduled() bool {
	return b.Status != StatusCancelled && b.Status != StatusCompleted && b.Status != StatusRejected
}

// HoldsSlot returns true if the booking currently holds a slot reservation
func (b *Booking) HoldsSlot() bool {
	return b.SlotID != nil
}

// ScheduledAt возвращает дату и время начала услуги одним значением
func (b *Booking) ScheduledAt() (time.Time, error) {
	return b.StartTime.OnDate(b.BookingDate)
}

// RescheduleEntry неизменяемая запись в истории переносов бронирования
type RescheduleEntry struct {
	ID        int64
	BookingID int64

	Reason string

	OldDate      time.Time
	OldStartTime types.TimeString
	NewDate      time.Time
	NewStartTime types.TimeString

	// Разница полной стоимости: new_total - old_total (со знаком)
	PriceDifference float64

	CreatedAt time.Time
}

// CustomerBookingsFilter фильтр для получения бронирований клиента
type CustomerBookingsFilter struct {
	CustomerID int64
	Status     *BookingStatus
}

// ProviderBookingsFilter фильтр для получения бронирований исполнителя
type ProviderBookingsFilter struct {
	ProviderID      int64          // Обязательный параметр
	ServiceID       *int64         // Фильтр по услуге (опционально)
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли терминальные бронирования
}
