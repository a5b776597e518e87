package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64  // ID клиента
	ServiceID int64  // ID услуги
	SlotID    int64  // ID слота, который клиент бронирует

	// Адрес выполнения услуги
	AddressLine string
	City        string
	PostalCode  *string

	Notes *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64
	CustomerID int64
	ServiceID  int64
	ProviderID int64
	SlotID     *int64

	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString

	AddressLine string
	City        string
	PostalCode  *string

	Status string
	Step   string

	Tier        string
	BasePrice   float64
	RushFee     float64
	Discount    float64
	TotalAmount float64

	ServiceName string
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
