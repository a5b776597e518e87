package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

// PricingTier ценовая категория слота, производная от дня недели и часа начала
type PricingTier string

const (
	TierNormal    PricingTier = "normal"
	TierExpress   PricingTier = "express"
	TierUrgent    PricingTier = "urgent"
	TierEmergency PricingTier = "emergency"
)

// rushFeePercents надбавка (% от базовой цены услуги) по категориям
var rushFeePercents = map[PricingTier]float64{
	TierNormal:    0,
	TierExpress:   50,
	TierUrgent:    75,
	TierEmergency: 100,
}

// RushFeePercent возвращает процент надбавки для категории
func (t PricingTier) RushFeePercent() float64 {
	return rushFeePercents[t]
}

// IsValid проверяет, что значение входит в закрытое множество категорий
func (t PricingTier) IsValid() bool {
	_, ok := rushFeePercents[t]
	return ok
}

// hourRange полуинтервал часов [From, To) с категорией
type hourRange struct {
	From int
	To   int
	Tier PricingTier
}

// Таблицы категорий по типам дней. Ночное окно (до начала и после конца
// перечисленных диапазонов) не перечисляется явно: все неперечисленные часы -
// emergency, поэтому функция тотальна по построению.
//
// Будни: рабочие часы 09-18, по краям express, поздний вечер urgent.
var weekdayTiers = []hourRange{
	{7, 9, TierExpress},
	{9, 18, TierNormal},
	{18, 21, TierExpress},
	{21, 23, TierUrgent},
}

// Суббота: рабочие часы начинаются позже, ночное emergency-окно шире
var saturdayTiers = []hourRange{
	{8, 10, TierExpress},
	{10, 17, TierNormal},
	{17, 20, TierExpress},
	{20, 22, TierUrgent},
}

// Воскресенье: самое короткое normal-окно
var sundayTiers = []hourRange{
	{8, 10, TierExpress},
	{10, 16, TierNormal},
	{16, 19, TierExpress},
	{19, 21, TierUrgent},
}

// Categorize определяет ценовую категорию слота по дате (день недели) и часу начала.
// Единственный источник правды для категорий: генерация слотов и пересчет цены
// при переносе обязаны вызывать эту функцию, а не хранить собственные таблицы.
func Categorize(date time.Time, startTime types.TimeString) (PricingTier, error) {
	hour, err := startTime.Hour()
	if err != nil {
		return "", fmt.Errorf("categorize: %w", err)
	}

	var table []hourRange
	switch date.Weekday() {
	case time.Saturday:
		table = saturdayTiers
	case time.Sunday:
		table = sundayTiers
	default:
		table = weekdayTiers
	}

	for _, r := range table {
		if hour >= r.From && hour < r.To {
			return r.Tier, nil
		}
	}

	// Все часы вне перечисленных диапазонов - ночное окно
	return TierEmergency, nil
}

// CalculateRushFee считает надбавку от базовой цены услуги.
// Процент всегда берется от базовой цены, а не от уже посчитанного total.
func CalculateRushFee(basePrice float64, tier PricingTier) float64 {
	return basePrice * tier.RushFeePercent() / 100
}

// CalculateTotal считает полную стоимость бронирования
func CalculateTotal(basePrice, rushFee, discount float64) float64 {
	return basePrice + rushFee - discount
}
