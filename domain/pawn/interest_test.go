package pawn

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFee(t *testing.T) {
	// compare via String, big.Int zero values differ structurally
	assert.Equal(t, "10", Fee(big.NewInt(1000)).String())
	// rounds down
	assert.Equal(t, "0", Fee(big.NewInt(99)).String())
	assert.Equal(t, "1", Fee(big.NewInt(199)).String())
}

func TestCalculateOwed(t *testing.T) {
	tests := []struct {
		name         string
		principal    int64
		duration     int64
		rateBps      int64
		startedAt    int64
		settledAt    int64
		wantOwed     int64
		wantFee      int64
		wantInterest int64
	}{
		{
			name:      "immediate settle bills full term",
			principal: 1000, duration: 10 * SecondsPerDay, rateBps: 1000,
			startedAt: 0, settledAt: 0,
			wantOwed: 1012, wantFee: 10, wantInterest: 2,
		},
		{
			name:      "mid term settle bills remainder at half rate",
			principal: 1000, duration: 10 * SecondsPerDay, rateBps: 1000,
			startedAt: 0, settledAt: 5 * SecondsPerDay,
			wantOwed: 1011, wantFee: 10, wantInterest: 1,
		},
		{
			name:      "settle after maturity caps at full term",
			principal: 1000, duration: 10 * SecondsPerDay, rateBps: 1000,
			startedAt: 0, settledAt: 30 * SecondsPerDay,
			wantOwed: 1012, wantFee: 10, wantInterest: 2,
		},
		{
			name:      "sub day loan billed as one day",
			principal: 1000000, duration: 3600, rateBps: 36500,
			startedAt: 0, settledAt: 0,
			// base = 1000000*36500/10000 = 3650000, one day = 10000
			wantOwed: 1020000, wantFee: 10000, wantInterest: 10000,
		},
		{
			name:      "large principal",
			principal: 1000000000000000000, duration: 365 * SecondsPerDay, rateBps: 1200,
			startedAt: 1000, settledAt: 1000 + 100*SecondsPerDay,
			// base = 1.2e17, elapsed 101 days = 33205479452054794
			// remainder 264 days at half rate = 43397260273972602
			wantOwed: 1086602739726027396, wantFee: 10000000000000000, wantInterest: 76602739726027396,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owed, fee, interest := CalculateOwed(big.NewInt(tt.principal), tt.duration, tt.rateBps, tt.startedAt, tt.settledAt)
			assert.Equal(t, big.NewInt(tt.wantOwed).String(), owed.String())
			assert.Equal(t, big.NewInt(tt.wantFee).String(), fee.String())
			assert.Equal(t, big.NewInt(tt.wantInterest).String(), interest.String())
		})
	}
}

func TestCalculateOwedMonotonic(t *testing.T) {
	principal := big.NewInt(5000000)
	duration := int64(30 * SecondsPerDay)
	rateBps := int64(2500)
	startedAt := int64(1650000000)

	// within the open window owed only grows as days elapse
	prev := big.NewInt(0)
	for settle := startedAt + 1; settle <= startedAt+duration; settle += SecondsPerDay / 2 {
		owed, _, _ := CalculateOwed(principal, duration, rateBps, startedAt, settle)
		if settle > startedAt+1 {
			assert.True(t, owed.Cmp(prev) >= 0, "owed decreased at settle %d", settle)
		}
		prev = owed
	}

	// constant after maturity
	atMaturity, _, _ := CalculateOwed(principal, duration, rateBps, startedAt, startedAt+duration)
	after, _, _ := CalculateOwed(principal, duration, rateBps, startedAt, startedAt+duration+123456)
	assert.Zero(t, atMaturity.Cmp(after))
}

func TestCalculateOwedPure(t *testing.T) {
	principal := big.NewInt(123456789)
	a1, f1, i1 := CalculateOwed(principal, 7*SecondsPerDay, 800, 100, 100+3*SecondsPerDay)
	a2, f2, i2 := CalculateOwed(principal, 7*SecondsPerDay, 800, 100, 100+3*SecondsPerDay)
	assert.Zero(t, a1.Cmp(a2))
	assert.Zero(t, f1.Cmp(f2))
	assert.Zero(t, i1.Cmp(i2))
	// inputs untouched
	assert.Equal(t, "123456789", principal.String())
}
