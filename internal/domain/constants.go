package domain

// Default configuration values
const (
	// DefaultSlotDurationMinutes шаг генерации слотов из рабочих окон исполнителя
	DefaultSlotDurationMinutes = 60

	// DefaultMaxReservations вместимость слота, сгенерированного из рабочего окна
	DefaultMaxReservations = 1

	// MaxReschedules жесткий лимит переносов одного бронирования.
	// Четвертая попытка отклоняется бизнес-ошибкой, а не валидацией.
	MaxReschedules = 3

	// RescheduleOptionsDays горизонт подбора слотов для переноса
	RescheduleOptionsDays = 14

	// AdvanceBookingDays горизонт генерации слотов: дальше этой границы
	// слоты не генерируются и бронирования не создаются
	AdvanceBookingDays = 60
)

// Business validation constants
const (
	MinRating = 1
	MaxRating = 5

	MaxNotesLength  = 500
	MaxReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список терминальных статусов бронирования
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
}

// InternalStatuses список системных статусов, недоступных для прямой установки
var InternalStatuses = []BookingStatus{
	StatusPaymentPending,
	StatusAwaitingConfirmation,
	StatusDisputed,
}
