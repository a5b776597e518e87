package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	createBooking "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID   int64   `json:"serviceId"`
	SlotID      int64   `json:"slotId"`
	AddressLine string  `json:"addressLine"`
	City        string  `json:"city"`
	PostalCode  *string `json:"postalCode,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) *createBooking.Request {
	return &createBooking.Request{
		UserID:      userID,
		ServiceID:   r.ServiceID,
		SlotID:      r.SlotID,
		AddressLine: r.AddressLine,
		City:        r.City,
		PostalCode:  r.PostalCode,
		Notes:       r.Notes,
	}
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	ServiceID  int64  `json:"serviceId"`
	ProviderID int64  `json:"providerId"`
	SlotID     *int64 `json:"slotId,omitempty"`

	BookingDate string `json:"bookingDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`

	AddressLine string  `json:"addressLine"`
	City        string  `json:"city"`
	PostalCode  *string `json:"postalCode,omitempty"`

	Status string `json:"status"`
	Step   string `json:"step"`

	Tier        string  `json:"tier"`
	BasePrice   float64 `json:"basePrice"`
	RushFee     float64 `json:"rushFee"`
	Discount    float64 `json:"discount"`
	TotalAmount float64 `json:"totalAmount"`

	ServiceName string  `json:"serviceName"`
	Notes       *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(r *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		ServiceID:  r.ServiceID,
		ProviderID: r.ProviderID,
		SlotID:     r.SlotID,

		BookingDate: r.BookingDate.Format(domain.DateFormat),
		StartTime:   r.StartTime.String(),
		EndTime:     r.EndTime.String(),

		AddressLine: r.AddressLine,
		City:        r.City,
		PostalCode:  r.PostalCode,

		Status: r.Status,
		Step:   r.Step,

		Tier:        r.Tier,
		BasePrice:   r.BasePrice,
		RushFee:     r.RushFee,
		Discount:    r.Discount,
		TotalAmount: r.TotalAmount,

		ServiceName: r.ServiceName,
		Notes:       r.Notes,

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
