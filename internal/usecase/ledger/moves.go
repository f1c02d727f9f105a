package ledger

import (
	"context"
	"errors"

	"policylend/internal/domain/ledger"

	"gorm.io/gorm"
)

// Tx-scoped balance primitives. Callers that compose these with other state
// changes (the loan core does) must invoke them on a repository bound to the
// enclosing transaction so a later failure rolls the whole operation back.

// Credit adds amount to an account, creating the balance row on first use.
func Credit(ctx context.Context, repo ledger.Repository, account, token string, amount int64) error {
	b, err := repo.GetBalanceForUpdate(ctx, account, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.CreateBalance(ctx, &ledger.Balance{Account: account, Token: token, Amount: amount})
	}
	if err != nil {
		return err
	}
	b.Amount += amount
	return repo.SaveBalance(ctx, b)
}

// Debit removes amount from an account, failing without partial effect when
// the balance cannot cover it.
func Debit(ctx context.Context, repo ledger.Repository, account, token string, amount int64) error {
	b, err := repo.GetBalanceForUpdate(ctx, account, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	if b.Amount < amount {
		return ledger.ErrInsufficientBalance
	}
	b.Amount -= amount
	return repo.SaveBalance(ctx, b)
}

// Move debits from and credits to within the caller's transaction.
func Move(ctx context.Context, repo ledger.Repository, from, to, token string, amount int64) error {
	if err := Debit(ctx, repo, from, token, amount); err != nil {
		return err
	}
	return Credit(ctx, repo, to, token, amount)
}

// SpendAllowance consumes amount of the allowance owner granted spender.
func SpendAllowance(ctx context.Context, repo ledger.Repository, owner, spender, token string, amount int64) error {
	a, err := repo.GetAllowanceForUpdate(ctx, owner, spender, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.ErrInsufficientAllowance
	}
	if err != nil {
		return err
	}
	if a.Amount < amount {
		return ledger.ErrInsufficientAllowance
	}
	a.Amount -= amount
	return repo.SaveAllowance(ctx, a)
}
