package loan

import (
	"math"
	"math/big"

	"policylend/internal/domain/loan"
)

const (
	bpsDenominator = 10_000
	secondsPerYear = 31_536_000
)

// accruedInterest computes floor(principal * rateBps * elapsed / (10000 *
// secondsPerYear)). big.Int keeps the triple product exact for any principal;
// Quo truncates toward zero, so the borrower is never charged a rounded-up
// unit.
func accruedInterest(principal, rateBps, elapsedSecs int64) int64 {
	if principal <= 0 || rateBps <= 0 || elapsedSecs <= 0 {
		return 0
	}
	n := new(big.Int).Mul(big.NewInt(principal), big.NewInt(rateBps))
	n.Mul(n, big.NewInt(elapsedSecs))
	n.Quo(n, big.NewInt(int64(bpsDenominator)*secondsPerYear))
	if !n.IsInt64() {
		return math.MaxInt64
	}
	return n.Int64()
}

// totalRepaymentAt is principal plus interest accrued up to nowUnix, with
// accrual capped at the loan's nominal duration: interest stops at maturity,
// it does not compound past it. Monotonically non-decreasing in nowUnix for
// an unchanged loan.
func totalRepaymentAt(l *loan.Loan, nowUnix int64) int64 {
	if l.StartTime == 0 {
		return l.Principal
	}
	elapsed := nowUnix - l.StartTime
	if elapsed > l.DurationSecs {
		elapsed = l.DurationSecs
	}
	return l.Principal + accruedInterest(l.Principal, l.InterestRateBps, elapsed)
}
