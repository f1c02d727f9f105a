package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetActiveLoanByPolicyID(ctx context.Context, policyID string) (*Loan, error)
	ListByBorrower(ctx context.Context, borrower string) ([]Loan, error)
	CountAll(ctx context.Context) (int64, error)
	Save(ctx context.Context, l *Loan) error
}
