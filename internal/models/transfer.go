package models

import "github.com/shopspring/decimal"

// Transfer is a suggested payment between two members that moves the group
// toward settlement. Transfers are recommendations computed from balances;
// they are never persisted.
type Transfer struct {
	// From is the member who pays (debtor settling up).
	From string `json:"from"`

	// To is the member who receives (creditor being paid).
	To string `json:"to"`

	// Amount is the payment amount.
	Amount decimal.Decimal `json:"amount"`
}
