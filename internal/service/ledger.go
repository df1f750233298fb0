// Package service implements the ledger operations the HTTP layer exposes.
// Every group-scoped operation takes the requesting user's id, resolved by
// the identity middleware, and enforces the membership and creator guards
// before touching storage.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/splitward/splitward/internal/ledger"
	"github.com/splitward/splitward/internal/models"
	"github.com/splitward/splitward/internal/storage"
)

// Ledger coordinates the pure splitting core with the storage backend.
type Ledger struct {
	store storage.Store
}

// NewLedger creates a new Ledger service with the given storage backend.
func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// CreateExpenseParams carries the caller-supplied fields for a new expense.
type CreateExpenseParams struct {
	GroupID     string              `json:"group_id"`
	Label       string              `json:"label"`
	Total       decimal.Decimal     `json:"total"`
	Date        int64               `json:"date,omitempty"`
	PayerID     string              `json:"payer_id,omitempty"`
	Allocations []ledger.Allocation `json:"allocations"`
}

// CreateGroup creates a group owned by creatorID. The creator is always a
// member: when absent from members it is folded in at the front.
func (l *Ledger) CreateGroup(ctx context.Context, name, creatorID string, members []string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ledger.ErrValidation)
	}

	seen := make(map[string]bool, len(members)+1)
	all := make([]string, 0, len(members)+1)
	if !contains(members, creatorID) {
		all = append(all, creatorID)
		seen[creatorID] = true
	}
	for _, m := range members {
		if m == "" {
			return nil, fmt.Errorf("%w: empty member id", ledger.ErrValidation)
		}
		if seen[m] {
			return nil, fmt.Errorf("%w: duplicate member %s", ledger.ErrValidation, m)
		}
		seen[m] = true
		all = append(all, m)
	}

	group := &models.Group{
		Name:      name,
		CreatorID: creatorID,
		Members:   all,
	}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "creator", creatorID, "members", len(all))
	return group, nil
}

// GetGroup retrieves a group. Only members may view it.
func (l *Ledger) GetGroup(ctx context.Context, groupID, requesterID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(requesterID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ledger.ErrForbidden, requesterID, groupID)
	}
	return group, nil
}

// ListGroups retrieves every group the requester belongs to.
func (l *Ledger) ListGroups(ctx context.Context, requesterID string) ([]*models.Group, error) {
	return l.store.ListGroupsByMember(ctx, requesterID)
}

// DeleteGroup removes a group and all its expenses. Only the creator may
// delete.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID, requesterID string) error {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != requesterID {
		return fmt.Errorf("%w: only the creator may delete group %s", ledger.ErrForbidden, groupID)
	}

	if err := l.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("Group deleted", "group_id", groupID, "expenses_cascaded", true)
	return nil
}

// CreateExpense validates and records a new expense. The requester must be a
// group member; the payer defaults to the group creator and must be a member;
// every allocation must name a member; shares must sum to the total within
// tolerance. All splits start unpaid.
func (l *Ledger) CreateExpense(ctx context.Context, p CreateExpenseParams, requesterID string) (*models.Expense, error) {
	group, err := l.store.GetGroup(ctx, p.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(requesterID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ledger.ErrForbidden, requesterID, p.GroupID)
	}

	if p.Label == "" {
		return nil, fmt.Errorf("%w: expense label required", ledger.ErrValidation)
	}
	if !p.Total.IsPositive() {
		return nil, fmt.Errorf("%w: expense total must be positive, got %s", ledger.ErrValidation, p.Total)
	}

	payerID := p.PayerID
	if payerID == "" {
		payerID = group.CreatorID
	}
	if !group.HasMember(payerID) {
		return nil, fmt.Errorf("%w: payer %s is not a member of group %s", ledger.ErrValidation, payerID, p.GroupID)
	}
	for _, a := range p.Allocations {
		if !group.HasMember(a.MemberID) {
			return nil, fmt.Errorf("%w: allocation member %s is not in group %s", ledger.ErrValidation, a.MemberID, p.GroupID)
		}
	}

	splits, err := ledger.MakeSplits(p.Total, p.Allocations)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID: p.GroupID,
		Label:   p.Label,
		PayerID: payerID,
		Total:   p.Total,
		Date:    p.Date,
		Splits:  splits,
	}
	if err := l.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"total", expense.Total,
		"payer", expense.PayerID,
		"splits", len(expense.Splits),
	)
	return expense, nil
}

// GetExpense retrieves an expense. Only members of the owning group may view
// it.
func (l *Ledger) GetExpense(ctx context.Context, expenseID, requesterID string) (*models.Expense, error) {
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := l.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(requesterID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ledger.ErrForbidden, requesterID, expense.GroupID)
	}
	return expense, nil
}

// ListExpenses retrieves a group's expenses in creation order. Only members
// may list.
func (l *Ledger) ListExpenses(ctx context.Context, groupID, requesterID string) ([]*models.Expense, error) {
	if _, err := l.GetGroup(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	return l.store.ListExpensesByGroup(ctx, groupID)
}

// MarkSplitPaid settles one member's share of an expense, exactly once.
// Allowed for the split's own member or the group creator. A second call on
// the same split, or the loser of a concurrent race, gets ErrConflict.
// Returns the expense as it stands after the update.
func (l *Ledger) MarkSplitPaid(ctx context.Context, expenseID, memberID, requesterID string) (*models.Expense, error) {
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := l.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	if requesterID != memberID && requesterID != group.CreatorID {
		return nil, fmt.Errorf("%w: only member %s or the group creator may settle this split",
			ledger.ErrForbidden, memberID)
	}
	if expense.SplitFor(memberID) == nil {
		return nil, fmt.Errorf("%w: no split for member %s in expense %s", ledger.ErrNotFound, memberID, expenseID)
	}

	// The store's conditional update is the real gate; the checks above
	// only produce friendlier errors for the common cases.
	if err := l.store.MarkSplitPaid(ctx, expenseID, memberID); err != nil {
		return nil, err
	}

	updated, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	slog.Info("Split settled",
		"expense_id", expenseID,
		"member", memberID,
		"requester", requesterID,
		"expense_settled", updated.Settled(),
	)
	return updated, nil
}

// Balances computes each member's net position across the group's unpaid
// splits. Only members may read balances.
func (l *Ledger) Balances(ctx context.Context, groupID, requesterID string) (map[string]decimal.Decimal, error) {
	group, err := l.GetGroup(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	expenses, err := l.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeBalances(group, expenses), nil
}

// SettlementPlan computes the minimal transfers that settle the group's
// current balances.
func (l *Ledger) SettlementPlan(ctx context.Context, groupID, requesterID string) ([]models.Transfer, error) {
	balances, err := l.Balances(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	return ledger.SimplifyDebts(balances)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
