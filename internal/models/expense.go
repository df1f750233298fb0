package models

import "github.com/shopspring/decimal"

// Split is one member's share of an expense's total amount.
type Split struct {
	// MemberID is the member who owes this share. Must be a member of the
	// expense's group.
	MemberID string `json:"member_id"`

	// Share is this member's portion of the expense total. Non-negative.
	Share decimal.Decimal `json:"share"`

	// Paid reports whether this share has been settled with the payer.
	// Transitions false→true exactly once.
	Paid bool `json:"paid"`
}

// Expense represents a single recorded expense and how it divides across
// members. Everything except the Paid flag on its splits is immutable after
// creation.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// Label is a human-readable description (e.g., "Groceries"). Non-empty.
	Label string `json:"label"`

	// PayerID is the member who fronted the full amount. Defaults to the
	// group creator when no payer is named at creation.
	PayerID string `json:"payer_id"`

	// Total is the full expense amount. Positive; equals the sum of all
	// split shares within rounding tolerance.
	Total decimal.Decimal `json:"total"`

	// Date is the Unix timestamp the expense is dated to. Defaults to
	// creation time when unspecified.
	Date int64 `json:"date"`

	// Splits is the per-member division of Total, one entry per
	// participating member, in the order they were supplied.
	Splits []Split `json:"splits"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`
}

// Settled reports whether every split has been paid. This is the expense's
// overall paid state; it is always derived from the splits, never stored.
func (e *Expense) Settled() bool {
	for _, s := range e.Splits {
		if !s.Paid {
			return false
		}
	}
	return true
}

// SplitFor returns the split for the given member, or nil if the member has
// no share in this expense.
func (e *Expense) SplitFor(memberID string) *Split {
	for i := range e.Splits {
		if e.Splits[i].MemberID == memberID {
			return &e.Splits[i]
		}
	}
	return nil
}
