package domain

import "time"

// ServiceDelivery запись о выполнении услуги: мост между заявлением исполнителя
// "услуга выполнена" и подтверждением клиента. Один к одному с бронированием.
// Создается только при отметке выполнения, мутируется один раз подтверждением
// клиента, никогда не удаляется.
type ServiceDelivery struct {
	ID        int64
	BookingID int64

	DeliveredAt time.Time
	DeliveredBy int64 // ID исполнителя

	Notes     *string
	PhotoRefs []string

	// Подтверждение клиента. NULL до подтверждения.
	CustomerConfirmedAt *time.Time
	Rating              *int // 1-5
	CustomerNotes       *string
	Recommend           *bool

	Disputed      bool
	DisputeReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConfirmed returns true if the customer has confirmed the delivery
func (d *ServiceDelivery) IsConfirmed() bool {
	return d.CustomerConfirmedAt != nil
}

// CashCollection запись о наличной оплате, принятой исполнителем.
// Бухгалтерская запись: не влияет на статус бронирования, но сумма обязана
// сходиться с полной стоимостью бронирования.
type CashCollection struct {
	ID        int64
	BookingID int64

	ProviderID int64
	Amount     float64

	CollectedAt time.Time
	Note        *string

	CreatedAt time.Time
}
