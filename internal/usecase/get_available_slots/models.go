package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	UserID    int64     // ID пользователя (для логирования, не влияет на результат)
	ServiceID int64     // ID услуги
	Date      time.Time // Дата для получения слотов (без времени)

	// BrowseOnly не материализует недостающие слоты в БД:
	// просмотр расписания без побочных эффектов
	BrowseOnly bool
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       time.Time // Дата, на которую запрашивались слоты
	ServiceID  int64     // ID услуги
	ProviderID int64     // ID исполнителя
	Slots      []Slot    // Список доступных слотов
}

// Slot модель доступного слота с ценой
type Slot struct {
	// ID слота в БД. nil в browse-режиме для слотов, которые еще не материализованы
	ID *int64

	StartTime types.TimeString
	EndTime   types.TimeString

	Tier string // Ценовая категория слота

	AvailableSpots int
	TotalSpots     int

	BasePrice  float64 // Базовая цена с учетом переопределения слота
	RushFee    float64 // Надбавка за срочность
	TotalPrice float64 // Итоговая цена слота
}
