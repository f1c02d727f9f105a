package uow

import (
	"context"

	"policylend/internal/domain/ledger"
	"policylend/internal/domain/loan"
	"policylend/internal/domain/policy"
	"policylend/internal/domain/risk"
	"policylend/internal/domain/vault"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Loans    loan.Repository
	Policies policy.Repository
	Ledger   ledger.Repository
	Vault    vault.Repository
	Risk     risk.Repository
}

// UnitOfWork runs fn inside a single all-or-nothing transaction: if fn
// returns an error every side effect within it is rolled back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, giving each loan at most one
	// in-flight state transition at a time.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
