package pawn

import (
	"math/big"
)

const (
	SecondsPerDay = 86400
	DaysPerYear   = 365

	feePercent      = 1
	rateDenominator = 10000
)

var (
	bigFeePercent      = big.NewInt(feePercent)
	big100             = big.NewInt(100)
	bigRateDenominator = big.NewInt(rateDenominator)
	bigDaysPerYear     = big.NewInt(DaysPerYear)
	big2               = big.NewInt(2)
)

// Fee is the flat protocol fee on a loan principal, 1% rounded down.
func Fee(principal *big.Int) *big.Int {
	fee := new(big.Int).Mul(principal, bigFeePercent)
	return fee.Div(fee, big100)
}

// FullTermOwed is the repayment quote for a loan held to maturity,
// shown on listings before any settlement time is known.
func FullTermOwed(principal *big.Int, duration, rateBps int64) *big.Int {
	owed, _, _ := CalculateOwed(principal, duration, rateBps, 0, 0)
	return owed
}

// CalculateOwed computes the exact amount a borrower must submit to
// settle a loan at settledAt. Interest accrues per elapsed day at the
// offer rate; days the loan would have run but didn't are billed at
// half rate. Integer truncation happens at each division in the order
// written, which keeps the figure reproducible across callers, so do
// not reorder the arithmetic.
func CalculateOwed(principal *big.Int, duration, rateBps, startedAt, settledAt int64) (owed, fee, interest *big.Int) {
	maxDays := duration / SecondsPerDay
	if maxDays < 1 {
		// a sub-day loan is billed as one day
		maxDays = 1
	}

	var elapsedDays int64
	if startedAt < settledAt && settledAt < startedAt+duration {
		elapsedDays = (settledAt-startedAt)/SecondsPerDay + 1
	} else {
		elapsedDays = maxDays
	}
	if elapsedDays > maxDays {
		elapsedDays = maxDays
	}

	fee = Fee(principal)

	// base = principal * rate / 10000, interest at 100% rate for one year
	base := new(big.Int).Mul(principal, big.NewInt(rateBps))
	base.Div(base, bigRateDenominator)

	interest = new(big.Int).Mul(base, big.NewInt(elapsedDays))
	interest.Div(interest, bigDaysPerYear)

	if elapsedDays < maxDays {
		remainder := new(big.Int).Mul(base, big.NewInt(maxDays-elapsedDays))
		remainder.Div(remainder, bigDaysPerYear)
		remainder.Div(remainder, big2)
		interest.Add(interest, remainder)
	}

	owed = new(big.Int).Add(fee, interest)
	owed.Add(owed, principal)
	return owed, fee, interest
}
