package catalogservice

// Service модель услуги из каталога
type Service struct {
	ID         int64   `json:"id"`
	ProviderID int64   `json:"provider_id"`
	Name       string  `json:"name"`
	BasePrice  float64 `json:"base_price"`
	IsActive   bool    `json:"is_active"`
}

// Provider модель исполнителя из каталога
type Provider struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	IsActive    bool    `json:"is_active"`
	OperatorIDs []int64 `json:"operator_ids"`
}

// IsOperator проверяет, что пользователь - оператор исполнителя
func (p *Provider) IsOperator(userID int64) bool {
	for _, id := range p.OperatorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от каталога
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
