package loan

import (
	"context"
	"errors"

	domainLoan "policylend/internal/domain/loan"
	domainPolicy "policylend/internal/domain/policy"
	"policylend/internal/domain/uow"
	domainVault "policylend/internal/domain/vault"

	"gorm.io/gorm"
)

// Collateral custody. These run only inside a loan transaction owned by the
// usecase; custody never changes through any other path, which is what makes
// "release fires with repayment, not separately" hold.

func (u *Usecase) depositCollateral(ctx context.Context, r uow.Repos, l *domainLoan.Loan) error {
	rec, err := r.Vault.GetByLoanID(ctx, l.LoanID)
	switch {
	case err == nil:
		if rec.IsDeposited {
			return domainVault.ErrAlreadyDeposited
		}
		// a previously released record is reused, not duplicated
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = nil
	default:
		return err
	}

	p, err := r.Policies.GetByPolicyIDForUpdate(ctx, l.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainLoan.ErrCollateralUnavailable
		}
		return err
	}
	if p.Owner != l.Borrower || p.Status != domainPolicy.StatusActive {
		return domainLoan.ErrCollateralUnavailable
	}

	p.Owner = u.vaultAccount
	if err := r.Policies.Save(ctx, p); err != nil {
		return err
	}

	if rec != nil {
		rec.PolicyID = l.PolicyID
		rec.Depositor = l.Borrower
		rec.IsDeposited = true
		rec.ReleasedAt = nil
		return r.Vault.Save(ctx, rec)
	}
	return r.Vault.Create(ctx, &domainVault.CollateralRecord{
		LoanID:      l.LoanID,
		PolicyID:    l.PolicyID,
		Depositor:   l.Borrower,
		IsDeposited: true,
	})
}

func (u *Usecase) releaseCollateral(ctx context.Context, r uow.Repos, l *domainLoan.Loan, to string) error {
	rec, err := r.Vault.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainVault.ErrNoCollateral
		}
		return err
	}
	if !rec.IsDeposited {
		return domainVault.ErrNoCollateral
	}

	p, err := r.Policies.GetByPolicyIDForUpdate(ctx, rec.PolicyID)
	if err != nil {
		return err
	}
	p.Owner = to
	if err := r.Policies.Save(ctx, p); err != nil {
		return err
	}

	now := u.now().UTC()
	rec.IsDeposited = false
	rec.ReleasedAt = &now
	return r.Vault.Save(ctx, rec)
}

// CollateralInfo reports the custody record for a loan.
func (u *Usecase) CollateralInfo(ctx context.Context, loanID string) (*CollateralInfoDTO, error) {
	rec, err := u.vault.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainVault.ErrNoCollateral
		}
		return nil, err
	}
	return &CollateralInfoDTO{
		LoanID:      rec.LoanID,
		PolicyID:    rec.PolicyID,
		Depositor:   rec.Depositor,
		IsDeposited: rec.IsDeposited,
	}, nil
}
