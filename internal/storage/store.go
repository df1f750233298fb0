// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitward/splitward/internal/models"
)

// Store defines the interface for ledger storage operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
//
// Implementations must provide per-expense atomic compare-and-set semantics
// for MarkSplitPaid so the exactly-once settlement guarantee holds under
// concurrent callers, and must cascade deletes from a group to its expenses
// and splits.
//
// Failures are classified with the ledger error kinds: missing rows wrap
// ledger.ErrNotFound and a lost mark-paid race wraps ledger.ErrConflict.
type Store interface {
	// CreateGroup persists a new group and its member list.
	// Populates ID and CreatedAt when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by id, members in insertion order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember retrieves all groups the given user belongs to,
	// oldest first.
	ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// DeleteGroup removes a group and, by cascade, all its expenses and
	// their splits.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense and its splits in one transaction.
	// Populates ID, Date, and CreatedAt when unset.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by id, splits in insertion order.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves a group's expenses in creation order.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// MarkSplitPaid flips the split's paid flag from false to true. The
	// update is conditional on the flag still being false: exactly one of
	// any set of concurrent callers succeeds, the rest get
	// ledger.ErrConflict.
	MarkSplitPaid(ctx context.Context, expenseID, memberID string) error

	// Close releases any resources held by the store.
	Close() error
}
