package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/splitward/splitward/internal/models"
)

// party is one side of the settlement matching: a member and how much they
// are owed (creditor) or owe (debtor), both kept positive.
type party struct {
	id     string
	amount decimal.Decimal
}

// SimplifyDebts reduces a zero-sum balance mapping to a minimal transfer list
// by greedy matching: repeatedly pair the largest creditor with the largest
// debtor and move the smaller of the two amounts. Ties break on lower member
// id, so output is deterministic for identical input.
//
// Applying all transfers brings every balance within Tolerance of zero, and
// the list has at most n−1 entries for n non-zero balances.
//
// Balances that do not sum to approximately zero fail with ErrValidation:
// ComputeBalances always produces zero-sum output, so a non-zero sum here is
// a caller bug, not a normal-path condition.
func SimplifyDebts(balances map[string]decimal.Decimal) ([]models.Transfer, error) {
	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b)
	}
	if sum.Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: balances sum to %s, expected zero", ErrValidation, sum)
	}

	var creditors, debtors []party
	for id, b := range balances {
		switch {
		case b.GreaterThan(Tolerance):
			creditors = append(creditors, party{id: id, amount: b})
		case b.LessThan(Tolerance.Neg()):
			debtors = append(debtors, party{id: id, amount: b.Neg()})
		}
	}

	// Largest amount first, lower id first among equals. Amounts only ever
	// shrink as transfers are recorded, so the head stays the maximum
	// after re-sorting each round.
	byAmount := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if !parties[i].amount.Equal(parties[j].amount) {
				return parties[i].amount.GreaterThan(parties[j].amount)
			}
			return parties[i].id < parties[j].id
		}
	}

	var transfers []models.Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		sort.SliceStable(creditors, byAmount(creditors))
		sort.SliceStable(debtors, byAmount(debtors))

		creditor := &creditors[0]
		debtor := &debtors[0]

		amount := decimal.Min(creditor.amount, debtor.amount)
		transfers = append(transfers, models.Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)

		if creditor.amount.LessThanOrEqual(Tolerance) {
			creditors = creditors[1:]
		}
		if debtor.amount.LessThanOrEqual(Tolerance) {
			debtors = debtors[1:]
		}
	}

	return transfers, nil
}
