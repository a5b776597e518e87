package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	UserID    int64  // ID пользователя, выполняющего перенос
	BookingID int64  // ID бронирования
	NewSlotID int64  // ID нового слота
	Reason    string // Причина переноса (обязательна)
}

// Response модель ответа с результатом переноса
type Response struct {
	BookingID int64

	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString

	Tier        string
	BasePrice   float64
	RushFee     float64
	Discount    float64
	TotalAmount float64

	// Подписанная разница полной стоимости: new_total - old_total.
	// Положительная - доплата, отрицательная - возврат.
	PriceDifference float64

	// Сколько переносов еще доступно
	RemainingReschedules int
}

// HistoryEntry запись истории переносов
type HistoryEntry struct {
	Reason string

	OldDate      time.Time
	OldStartTime types.TimeString
	NewDate      time.Time
	NewStartTime types.TimeString

	PriceDifference float64

	CreatedAt time.Time
}

// HistoryResponse ответ с историей переносов бронирования
type HistoryResponse struct {
	BookingID int64
	Entries   []HistoryEntry
}
