package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitward/splitward/internal/models"
)

// Tolerance is the rounding slack allowed when comparing amounts: one cent of
// the currency's minor unit. Share sums may deviate from the expense total by
// at most this much, and balances within Tolerance of zero count as settled.
var Tolerance = decimal.New(1, -2) // 0.01

// Allocation is one requested share: a member and the amount they owe.
type Allocation struct {
	MemberID string          `json:"member_id"`
	Share    decimal.Decimal `json:"share"`
}

// MakeSplits validates allocations against the expense total and returns the
// resulting splits, all unpaid. It fails if allocations is empty, contains a
// duplicate member or a negative share, or the shares do not sum to total
// within Tolerance. Shares are never silently adjusted to fit.
func MakeSplits(total decimal.Decimal, allocations []Allocation) ([]models.Split, error) {
	if len(allocations) == 0 {
		return nil, fmt.Errorf("%w: expense needs at least one allocation", ErrValidation)
	}

	seen := make(map[string]bool, len(allocations))
	sum := decimal.Zero
	splits := make([]models.Split, len(allocations))

	for i, a := range allocations {
		if a.MemberID == "" {
			return nil, fmt.Errorf("%w: allocation %d has no member id", ErrValidation, i)
		}
		if seen[a.MemberID] {
			return nil, fmt.Errorf("%w: duplicate allocation for member %s", ErrValidation, a.MemberID)
		}
		seen[a.MemberID] = true

		if a.Share.IsNegative() {
			return nil, fmt.Errorf("%w: negative share %s for member %s", ErrValidation, a.Share, a.MemberID)
		}

		sum = sum.Add(a.Share)
		splits[i] = models.Split{MemberID: a.MemberID, Share: a.Share}
	}

	if diff := sum.Sub(total).Abs(); diff.GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: shares sum to %s but total is %s (off by %s)",
			ErrValidation, sum, total, diff)
	}

	return splits, nil
}
