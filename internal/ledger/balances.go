package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitward/splitward/internal/models"
)

// ComputeBalances aggregates a group's expenses into a net position per
// member. Positive means the group owes this member money; negative means the
// member owes the group.
//
// For every unpaid split, the expense's payer is credited the share and the
// split's member is debited it. A paid split contributes zero to both sides:
// payment means the member settled directly with the payer, so the obligation
// simply leaves the ledger. The payer's own split therefore always nets to
// zero, paid or not.
//
// Every group member appears in the result, with zero balance if uninvolved,
// and the balances always sum to zero by construction.
func ComputeBalances(group *models.Group, expenses []*models.Expense) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(group.Members))
	for _, m := range group.Members {
		balances[m] = decimal.Zero
	}

	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.Paid {
				continue
			}
			balances[e.PayerID] = balances[e.PayerID].Add(s.Share)
			balances[s.MemberID] = balances[s.MemberID].Sub(s.Share)
		}
	}

	return balances
}
