package vault

import "context"

type Repository interface {
	Create(ctx context.Context, r *CollateralRecord) error
	GetByLoanID(ctx context.Context, loanID string) (*CollateralRecord, error)
	Save(ctx context.Context, r *CollateralRecord) error
}
