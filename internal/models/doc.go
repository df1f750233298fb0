// Package models defines the core domain models for Splitward.
//
// # Models
//
//   - Group: a fixed set of members who share expenses
//   - Expense: a single recorded expense with its per-member splits
//   - Split: one member's share of an expense, with its own settled state
//   - Transfer: a suggested payment produced by debt simplification
//
// # Design Principles
//
// 1. **Opaque identities**: users are referenced by id strings only; accounts
// live in the external identity service, never here.
// 2. **Immutable after creation**: groups and expenses never change once
// written. The single exception is a Split's Paid flag, which transitions
// false→true exactly once.
// 3. **Derived state is computed, not stored**: an expense's settled state and
// all member balances are recomputed from splits on every read, so stored
// state and derived state cannot drift.
// 4. **Avoid circular references**: relationships use ID strings, not pointers.
package models
