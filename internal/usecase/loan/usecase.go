package loan

import (
	"context"
	"errors"
	"time"

	"policylend/internal/domain/access"
	domainLedger "policylend/internal/domain/ledger"
	domainLoan "policylend/internal/domain/loan"
	domainPolicy "policylend/internal/domain/policy"
	"policylend/internal/domain/uow"
	domainVault "policylend/internal/domain/vault"
	ledgeruc "policylend/internal/usecase/ledger"
	riskuc "policylend/internal/usecase/risk"
	"policylend/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Usecase is the loan lifecycle state machine:
//
//	Pending → Active → {Repaid | Liquidated}
//
// with Defaulted as a reporting-only marker between Active and Liquidated.
// Every transition runs inside a loan-scoped transaction that locks the loan
// row first, so each loan has at most one in-flight transition and a failed
// sub-step rolls back everything the operation touched.
type Usecase struct {
	uow      uow.UnitOfWork
	loans    domainLoan.Repository
	policies domainPolicy.Repository
	vault    domainVault.Repository
	risk     *riskuc.Engine
	auth     access.Authorizer

	snapshots Snapshotter
	metrics   TransitionRecorder
	log       *zap.Logger

	poolAccount  string
	vaultAccount string
	now          func() time.Time
}

type Config struct {
	UoW      uow.UnitOfWork
	Loans    domainLoan.Repository
	Policies domainPolicy.Repository
	Vault    domainVault.Repository
	Risk     *riskuc.Engine
	Auth     access.Authorizer

	// Optional collaborators.
	Snapshots Snapshotter
	Metrics   TransitionRecorder
	Log       *zap.Logger

	PoolAccount  string
	VaultAccount string
}

func NewUsecase(cfg Config) *Usecase {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		uow:          cfg.UoW,
		loans:        cfg.Loans,
		policies:     cfg.Policies,
		vault:        cfg.Vault,
		risk:         cfg.Risk,
		auth:         cfg.Auth,
		snapshots:    cfg.Snapshots,
		metrics:      cfg.Metrics,
		log:          log,
		poolAccount:  cfg.PoolAccount,
		vaultAccount: cfg.VaultAccount,
		now:          time.Now,
	}
}

// Request validates a loan request against the risk engine and records a
// pending loan. No funds or collateral move; the interest rate in force now
// is snapshotted onto the loan and never re-read.
func (u *Usecase) Request(ctx context.Context, in RequestLoanInput) (*LoanDTO, error) {
	assessment, err := u.risk.Assess(ctx, riskuc.AssessInput{
		Borrower:     in.Borrower,
		PolicyID:     in.PolicyID,
		Amount:       in.Amount,
		DurationSecs: in.DurationSecs,
		Token:        in.Token,
	})
	if err != nil {
		return nil, err
	}
	if !assessment.Approved {
		return nil, domainLoan.ErrRiskRejected
	}

	p, err := u.policies.GetByPolicyID(ctx, in.PolicyID)
	if err != nil {
		return nil, err
	}

	// one active loan per policy
	if _, err := u.loans.GetActiveLoanByPolicyID(ctx, p.PolicyID); err == nil {
		return nil, domainLoan.ErrCollateralUnavailable
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	l := &domainLoan.Loan{
		LoanID:          id.NewID32(),
		Borrower:        in.Borrower,
		PolicyID:        p.PolicyID,
		CollateralClass: p.CollateralClass,
		Principal:       in.Amount,
		InterestRateBps: assessment.InterestRateBps,
		Token:           in.Token,
		DurationSecs:    in.DurationSecs,
		Status:          domainLoan.StatusPending,
		StatusUpdatedAt: u.now().UTC(),
	}
	if err := u.loans.Create(ctx, l); err != nil {
		return nil, err
	}

	u.log.Info("loan requested",
		zap.String("loan_id", l.LoanID),
		zap.String("borrower", l.Borrower),
		zap.Int64("principal", l.Principal),
		zap.Int64("rate_bps", l.InterestRateBps))
	dto := toDTO(l)
	u.afterCommit(ctx, dto, 0)
	return dto, nil
}

// Activate locks the collateral in the vault and disburses principal from the
// liquidity pool to the borrower, in one transaction. Only the pending loan's
// borrower may activate.
func (u *Usecase) Activate(ctx context.Context, caller, loanID string) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusPending {
			return domainLoan.ErrInvalidState
		}
		if caller != l.Borrower {
			return access.ErrUnauthorized
		}

		if err := u.depositCollateral(ctx, r, l); err != nil {
			return err
		}
		if err := ledgeruc.Move(ctx, r.Ledger, u.poolAccount, l.Borrower, l.Token, l.Principal); err != nil {
			return err
		}

		now := u.now()
		l.StartTime = now.Unix()
		l.EndTime = l.StartTime + l.DurationSecs
		l.Status = domainLoan.StatusActive
		l.StatusUpdatedAt = now.UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.log.Info("loan activated", zap.String("loan_id", loanID), zap.Int64("end_time", out.EndTime))
	u.afterCommit(ctx, out, 0)
	return out, nil
}

// TotalRepayment is the deterministic amount owed at this moment: principal
// plus interest floored per elapsed second, capped at the loan's duration.
func (u *Usecase) TotalRepayment(ctx context.Context, loanID string) (int64, error) {
	l, err := u.getLoan(ctx, loanID)
	if err != nil {
		return 0, err
	}
	return totalRepaymentAt(l, u.now().Unix()), nil
}

// Repay pulls amount from the caller into the pool against a previously
// granted allowance. Amounts beyond the remaining repayment are rejected, not
// capped. Reaching the full repayment flips the loan to repaid and releases
// the collateral back to the borrower within the same transaction.
func (u *Usecase) Repay(ctx context.Context, caller, loanID string, amount int64) (*LoanDTO, error) {
	if amount <= 0 {
		return nil, domainLedger.ErrInvalidAmount
	}

	var out *LoanDTO
	var repaid int64
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrInvalidState
		}
		if caller != l.Borrower {
			return access.ErrUnauthorized
		}

		total := totalRepaymentAt(l, u.now().Unix())
		remaining := total - l.RepaidAmount
		if amount > remaining {
			return domainLoan.ErrOverRepayment
		}

		if err := ledgeruc.SpendAllowance(ctx, r.Ledger, caller, u.poolAccount, l.Token, amount); err != nil {
			return err
		}
		if err := ledgeruc.Move(ctx, r.Ledger, caller, u.poolAccount, l.Token, amount); err != nil {
			return err
		}

		l.RepaidAmount += amount
		if l.RepaidAmount == total {
			l.Status = domainLoan.StatusRepaid
			l.StatusUpdatedAt = u.now().UTC()
			if err := u.releaseCollateral(ctx, r, l, l.Borrower); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = toDTO(l)
		repaid = amount
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.log.Info("loan repayment",
		zap.String("loan_id", loanID),
		zap.Int64("amount", repaid),
		zap.String("status", out.Status))
	u.afterCommit(ctx, out, repaid)
	return out, nil
}

// Liquidate transfers the collateral to the caller once an active loan is
// past its end time. Requires the liquidator role. Irreversible: no further
// repayment is accepted afterwards.
func (u *Usecase) Liquidate(ctx context.Context, caller, loanID string) (*LoanDTO, error) {
	if err := access.Require(ctx, u.auth, caller, access.RoleLiquidator); err != nil {
		return nil, err
	}

	var out *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive && l.Status != domainLoan.StatusDefaulted {
			return domainLoan.ErrInvalidState
		}
		if u.now().Unix() <= l.EndTime {
			return domainLoan.ErrNotYetDefaulted
		}

		if err := u.releaseCollateral(ctx, r, l, caller); err != nil {
			return err
		}
		l.Status = domainLoan.StatusLiquidated
		l.StatusUpdatedAt = u.now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.log.Warn("loan liquidated", zap.String("loan_id", loanID), zap.String("liquidator", caller))
	u.afterCommit(ctx, out, 0)
	return out, nil
}

// MarkDefaulted labels an overdue active loan as defaulted. Reporting only:
// custody and balances are untouched, and liquidation re-checks the end time
// itself.
func (u *Usecase) MarkDefaulted(ctx context.Context, caller, loanID string) (*LoanDTO, error) {
	if err := access.Require(ctx, u.auth, caller, access.RoleLiquidator); err != nil {
		return nil, err
	}

	var out *LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrInvalidState
		}
		if u.now().Unix() <= l.EndTime {
			return domainLoan.ErrNotYetDefaulted
		}
		l.Status = domainLoan.StatusDefaulted
		l.StatusUpdatedAt = u.now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	u.afterCommit(ctx, out, 0)
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// ListByBorrower returns the borrower's loans in insertion order.
func (u *Usecase) ListByBorrower(ctx context.Context, borrower string) ([]LoanDTO, error) {
	loans, err := u.loans.ListByBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i]))
	}
	return out, nil
}

func (u *Usecase) getLoan(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainLoan.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// mapNotFound translates the driver's missing-row error from a loan-scoped
// transaction into the domain error.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainLoan.ErrNotFound
	}
	return err
}

// afterCommit pushes the committed state to the secondary index and metrics.
// Both are best-effort; a snapshot write failure must never fail the
// transition that produced it.
func (u *Usecase) afterCommit(ctx context.Context, dto *LoanDTO, repaid int64) {
	if u.snapshots != nil {
		if err := u.snapshots.StoreLoan(ctx, dto); err != nil {
			u.log.Warn("loan snapshot write failed",
				zap.String("loan_id", dto.LoanID),
				zap.Error(err))
		}
	}
	if u.metrics != nil {
		u.metrics.RecordTransition(domainLoan.Status(dto.Status))
		if repaid > 0 {
			u.metrics.RecordRepayment(dto.Token, repaid)
		}
	}
}
