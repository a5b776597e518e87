package models

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// Request модели

// WindowRequest данные рабочего окна исполнителя
type WindowRequest struct {
	UserID     int64   `json:"userId"`
	Weekday    int     `json:"weekday"` // 0 = воскресенье ... 6 = суббота
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
	IsActive   bool    `json:"isActive"`
}

// ToDomain конвертирует request в domain модель
func (r *WindowRequest) ToDomain(providerID int64) *domain.ProviderAvailability {
	w := &domain.ProviderAvailability{
		ProviderID: providerID,
		Weekday:    r.Weekday,
		StartTime:  types.TimeString(r.StartTime),
		EndTime:    types.TimeString(r.EndTime),
		IsActive:   r.IsActive,
	}

	if r.BreakStart != nil {
		breakStart := types.TimeString(*r.BreakStart)
		w.BreakStart = &breakStart
	}
	if r.BreakEnd != nil {
		breakEnd := types.TimeString(*r.BreakEnd)
		w.BreakEnd = &breakEnd
	}

	return w
}

// ServiceWindowRequest данные фиксированного окна услуги
type ServiceWindowRequest struct {
	UserID        int64    `json:"userId"`
	Weekday       int      `json:"weekday"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	MaxBookings   int      `json:"maxBookings"`
	IsPeak        bool     `json:"isPeak"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`
}

// ToDomain конвертирует request в domain модель
func (r *ServiceWindowRequest) ToDomain(serviceID int64) *domain.ServiceTimeSlot {
	return &domain.ServiceTimeSlot{
		ServiceID:     serviceID,
		Weekday:       r.Weekday,
		StartTime:     types.TimeString(r.StartTime),
		EndTime:       types.TimeString(r.EndTime),
		MaxBookings:   r.MaxBookings,
		IsPeak:        r.IsPeak,
		PriceOverride: r.PriceOverride,
	}
}

// DeleteRequest запрос на удаление окна
type DeleteRequest struct {
	UserID int64 `json:"userId"`
}

// Response модели

// WindowResponse ответ с данными рабочего окна
type WindowResponse struct {
	ID         int64   `json:"id"`
	ProviderID int64   `json:"providerId"`
	Weekday    int     `json:"weekday"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
	IsActive   bool    `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WindowListResponse ответ со списком рабочих окон
type WindowListResponse struct {
	Windows []WindowResponse `json:"windows"`
}

// ServiceWindowResponse ответ с данными фиксированного окна услуги
type ServiceWindowResponse struct {
	ID            int64    `json:"id"`
	ServiceID     int64    `json:"serviceId"`
	Weekday       int      `json:"weekday"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	MaxBookings   int      `json:"maxBookings"`
	IsPeak        bool     `json:"isPeak"`
	PriceOverride *float64 `json:"priceOverride,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Методы конвертации

// FromDomainWindow конвертирует domain модель в DTO
func FromDomainWindow(w *domain.ProviderAvailability) *WindowResponse {
	if w == nil {
		return nil
	}

	resp := &WindowResponse{
		ID:         w.ID,
		ProviderID: w.ProviderID,
		Weekday:    w.Weekday,
		StartTime:  w.StartTime.String(),
		EndTime:    w.EndTime.String(),
		IsActive:   w.IsActive,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}

	if w.BreakStart != nil {
		breakStart := w.BreakStart.String()
		resp.BreakStart = &breakStart
	}
	if w.BreakEnd != nil {
		breakEnd := w.BreakEnd.String()
		resp.BreakEnd = &breakEnd
	}

	return resp
}

// FromDomainWindowList конвертирует список domain моделей в DTO
func FromDomainWindowList(windows []*domain.ProviderAvailability) *WindowListResponse {
	result := &WindowListResponse{
		Windows: make([]WindowResponse, 0, len(windows)),
	}

	for _, w := range windows {
		if resp := FromDomainWindow(w); resp != nil {
			result.Windows = append(result.Windows, *resp)
		}
	}

	return result
}

// FromDomainServiceWindow конвертирует domain модель в DTO
func FromDomainServiceWindow(s *domain.ServiceTimeSlot) *ServiceWindowResponse {
	if s == nil {
		return nil
	}

	return &ServiceWindowResponse{
		ID:            s.ID,
		ServiceID:     s.ServiceID,
		Weekday:       s.Weekday,
		StartTime:     s.StartTime.String(),
		EndTime:       s.EndTime.String(),
		MaxBookings:   s.MaxBookings,
		IsPeak:        s.IsPeak,
		PriceOverride: s.PriceOverride,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
