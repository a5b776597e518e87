package models

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модели

// MarkDeliveredRequest запрос исполнителя на отметку выполнения услуги
type MarkDeliveredRequest struct {
	UserID    int64    `json:"userId"`
	Notes     *string  `json:"notes,omitempty"`
	PhotoRefs []string `json:"photoRefs,omitempty"`
}

// ConfirmCompletionRequest запрос клиента на подтверждение выполнения
type ConfirmCompletionRequest struct {
	UserID    int64   `json:"userId"`
	Rating    int     `json:"rating"`
	Notes     *string `json:"notes,omitempty"`
	Recommend bool    `json:"recommend"`
}

// OpenDisputeRequest запрос клиента на открытие спора по выполнению
type OpenDisputeRequest struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

// RecordCashCollectionRequest запрос на фиксацию принятой наличной оплаты
type RecordCashCollectionRequest struct {
	UserID int64   `json:"userId"`
	Amount float64 `json:"amount"`
	Note   *string `json:"note,omitempty"`
}

// Response модели

// DeliveryResponse ответ с данными о выполнении услуги
type DeliveryResponse struct {
	ID        int64 `json:"id"`
	BookingID int64 `json:"bookingId"`

	DeliveredAt time.Time `json:"deliveredAt"`
	DeliveredBy int64     `json:"deliveredBy"`

	Notes     *string  `json:"notes,omitempty"`
	PhotoRefs []string `json:"photoRefs,omitempty"`

	CustomerConfirmedAt *time.Time `json:"customerConfirmedAt,omitempty"`
	Rating              *int       `json:"rating,omitempty"`
	CustomerNotes       *string    `json:"customerNotes,omitempty"`
	Recommend           *bool      `json:"recommend,omitempty"`

	Disputed      bool    `json:"disputed"`
	DisputeReason *string `json:"disputeReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CashCollectionResponse ответ с данными о принятой наличной оплате
type CashCollectionResponse struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"bookingId"`
	ProviderID  int64     `json:"providerId"`
	Amount      float64   `json:"amount"`
	CollectedAt time.Time `json:"collectedAt"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CashCollectionListResponse ответ со списком наличных оплат
type CashCollectionListResponse struct {
	Collections []CashCollectionResponse `json:"collections"`
}

// Методы конвертации

// FromDomainDelivery конвертирует domain модель в DTO
func FromDomainDelivery(d *domain.ServiceDelivery) *DeliveryResponse {
	if d == nil {
		return nil
	}

	return &DeliveryResponse{
		ID:        d.ID,
		BookingID: d.BookingID,

		DeliveredAt: d.DeliveredAt,
		DeliveredBy: d.DeliveredBy,

		Notes:     d.Notes,
		PhotoRefs: d.PhotoRefs,

		CustomerConfirmedAt: d.CustomerConfirmedAt,
		Rating:              d.Rating,
		CustomerNotes:       d.CustomerNotes,
		Recommend:           d.Recommend,

		Disputed:      d.Disputed,
		DisputeReason: d.DisputeReason,

		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// FromDomainCashCollection конвертирует domain модель в DTO
func FromDomainCashCollection(c *domain.CashCollection) *CashCollectionResponse {
	if c == nil {
		return nil
	}

	return &CashCollectionResponse{
		ID:          c.ID,
		BookingID:   c.BookingID,
		ProviderID:  c.ProviderID,
		Amount:      c.Amount,
		CollectedAt: c.CollectedAt,
		Note:        c.Note,
		CreatedAt:   c.CreatedAt,
	}
}

// FromDomainCashCollectionList конвертирует список domain моделей в DTO
func FromDomainCashCollectionList(collections []*domain.CashCollection) *CashCollectionListResponse {
	result := &CashCollectionListResponse{
		Collections: make([]CashCollectionResponse, 0, len(collections)),
	}

	for _, c := range collections {
		if resp := FromDomainCashCollection(c); resp != nil {
			result.Collections = append(result.Collections, *resp)
		}
	}

	return result
}
