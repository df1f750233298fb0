package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitward/splitward/internal/ledger"
	"github.com/splitward/splitward/internal/models"
)

// CreateExpense persists an expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, label, payer_id, total, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Label, expense.PayerID,
		expense.Total.String(), expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		paid := 0
		if split.Paid {
			paid = 1
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO splits (expense_id, member_id, share, paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.MemberID, split.Share.String(), paid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by id, splits in insertion order.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var total string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, label, payer_id, total, date, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Label, &expense.PayerID,
		&total, &expense.Date, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: expense %s", ledger.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if expense.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse expense total %q: %w", total, err)
	}

	if expense.Splits, err = s.getSplits(ctx, expenseID); err != nil {
		return nil, err
	}

	return expense, nil
}

// ListExpensesByGroup retrieves a group's expenses in creation order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, label, payer_id, total, date, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var total string

		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Label, &expense.PayerID,
			&total, &expense.Date, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if expense.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse expense total %q: %w", total, err)
		}

		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if expense.Splits, err = s.getSplits(ctx, expense.ID); err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

// MarkSplitPaid flips the split's paid flag from false to true.
//
// The UPDATE is conditional on paid = 0, which is the compare-and-set:
// concurrent callers race on the same row but only one update can match the
// predicate, so exactly one caller wins and the rest see ErrConflict.
func (s *SQLiteStore) MarkSplitPaid(ctx context.Context, expenseID, memberID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE splits SET paid = 1 WHERE expense_id = ? AND member_id = ? AND paid = 0",
		expenseID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark split paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// No row updated: either the split does not exist or it was already
	// paid. Distinguish the two for the caller.
	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM splits WHERE expense_id = ? AND member_id = ?",
		expenseID, memberID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: no split for member %s in expense %s", ledger.ErrNotFound, memberID, expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to check split existence: %w", err)
	}

	return fmt.Errorf("%w: split for member %s in expense %s already paid", ledger.ErrConflict, memberID, expenseID)
}

// getSplits loads an expense's splits in insertion order.
func (s *SQLiteStore) getSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, share, paid FROM splits WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		var share string
		var paid int

		if err := rows.Scan(&split.MemberID, &share, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if split.Share, err = decimal.NewFromString(share); err != nil {
			return nil, fmt.Errorf("failed to parse split share %q: %w", share, err)
		}
		split.Paid = paid != 0

		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}
