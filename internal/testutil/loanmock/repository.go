package loanmock

import (
	"context"
	"errors"

	domain "policylend/internal/domain/loan"
)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in only the function fields a test needs.
type Repo struct {
	CreateFn                  func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn             func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn    func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetActiveLoanByPolicyIDFn func(ctx context.Context, policyID string) (*domain.Loan, error)
	ListByBorrowerFn          func(ctx context.Context, borrower string) ([]domain.Loan, error)
	CountAllFn                func(ctx context.Context) (int64, error)
	SaveFn                    func(ctx context.Context, l *domain.Loan) error
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetActiveLoanByPolicyID(ctx context.Context, policyID string) (*domain.Loan, error) {
	if m.GetActiveLoanByPolicyIDFn != nil {
		return m.GetActiveLoanByPolicyIDFn(ctx, policyID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListByBorrower(ctx context.Context, borrower string) ([]domain.Loan, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrower)
	}
	return nil, errUnimplemented
}

func (m *Repo) CountAll(ctx context.Context) (int64, error) {
	if m.CountAllFn != nil {
		return m.CountAllFn(ctx)
	}
	return 0, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
