package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/types"
)

var (
	// 2026-03-02 понедельник, 2026-03-07 суббота, 2026-03-08 воскресенье
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
)

func TestCategorize_Weekday(t *testing.T) {
	tests := []struct {
		start string
		want  domain.PricingTier
	}{
		{"06:59", domain.TierEmergency},
		{"07:00", domain.TierExpress},
		{"08:59", domain.TierExpress},
		{"09:00", domain.TierNormal},
		{"17:59", domain.TierNormal},
		{"18:00", domain.TierExpress},
		{"20:59", domain.TierExpress},
		{"21:00", domain.TierUrgent},
		{"22:59", domain.TierUrgent},
		{"23:00", domain.TierEmergency},
		{"02:00", domain.TierEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := domain.Categorize(monday, types.TimeString(tt.start))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategorize_Saturday(t *testing.T) {
	tests := []struct {
		start string
		want  domain.PricingTier
	}{
		{"07:59", domain.TierEmergency},
		{"08:00", domain.TierExpress},
		{"10:00", domain.TierNormal},
		{"16:59", domain.TierNormal},
		{"17:00", domain.TierExpress},
		{"20:00", domain.TierUrgent},
		{"22:00", domain.TierEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := domain.Categorize(saturday, types.TimeString(tt.start))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategorize_Sunday(t *testing.T) {
	tests := []struct {
		start string
		want  domain.PricingTier
	}{
		{"08:00", domain.TierExpress},
		{"10:00", domain.TierNormal},
		{"15:59", domain.TierNormal},
		{"16:00", domain.TierExpress},
		{"19:00", domain.TierUrgent},
		{"21:00", domain.TierEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := domain.Categorize(sunday, types.TimeString(tt.start))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Каждый час каждого типа дня должен попадать ровно в одну валидную категорию
func TestCategorize_Total(t *testing.T) {
	for _, date := range []time.Time{monday, saturday, sunday} {
		for hour := 0; hour < 24; hour++ {
			start := types.NewTimeString(time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC))
			tier, err := domain.Categorize(date, start)
			require.NoError(t, err)
			assert.True(t, tier.IsValid(), "date=%s hour=%d got tier %q", date.Weekday(), hour, tier)
		}
	}
}

func TestCategorize_InvalidTime(t *testing.T) {
	_, err := domain.Categorize(monday, types.TimeString("not-a-time"))
	assert.Error(t, err)
}

func TestCalculateRushFee(t *testing.T) {
	tests := []struct {
		tier domain.PricingTier
		want float64
	}{
		{domain.TierNormal, 0},
		{domain.TierExpress, 50},
		{domain.TierUrgent, 75},
		{domain.TierEmergency, 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.InDelta(t, tt.want, domain.CalculateRushFee(100, tt.tier), 0.001)
		})
	}
}

func TestCalculateTotal(t *testing.T) {
	assert.InDelta(t, 150, domain.CalculateTotal(100, 50, 0), 0.001)
	assert.InDelta(t, 130, domain.CalculateTotal(100, 50, 20), 0.001)
	assert.InDelta(t, 100, domain.CalculateTotal(100, 0, 0), 0.001)
}

func TestPricingTier_IsValid(t *testing.T) {
	assert.True(t, domain.TierNormal.IsValid())
	assert.True(t, domain.TierEmergency.IsValid())
	assert.False(t, domain.PricingTier("vip").IsValid())
	assert.False(t, domain.PricingTier("").IsValid())
}
