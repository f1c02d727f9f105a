package loan

import (
	"context"
	"time"

	"policylend/internal/domain/loan"
)

type RequestLoanInput struct {
	Borrower     string `json:"borrower"`
	PolicyID     string `json:"policy_id"`
	Amount       int64  `json:"amount"`
	DurationSecs int64  `json:"duration_secs"`
	Token        string `json:"token"`
}

type LoanDTO struct {
	LoanID          string    `json:"loan_id"`
	Borrower        string    `json:"borrower"`
	PolicyID        string    `json:"policy_id"`
	Token           string    `json:"token"`
	Principal       int64     `json:"principal"`
	InterestRateBps int64     `json:"interest_rate_bps"`
	StartTime       int64     `json:"start_time"`
	DurationSecs    int64     `json:"duration_secs"`
	EndTime         int64     `json:"end_time"`
	RepaidAmount    int64     `json:"repaid_amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type CollateralInfoDTO struct {
	LoanID      string `json:"loan_id"`
	PolicyID    string `json:"policy_id"`
	Depositor   string `json:"depositor"`
	IsDeposited bool   `json:"is_deposited"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		Borrower:        l.Borrower,
		PolicyID:        l.PolicyID,
		Token:           l.Token,
		Principal:       l.Principal,
		InterestRateBps: l.InterestRateBps,
		StartTime:       l.StartTime,
		DurationSecs:    l.DurationSecs,
		EndTime:         l.EndTime,
		RepaidAmount:    l.RepaidAmount,
		Status:          string(l.Status),
		CreatedAt:       l.CreatedAt,
	}
}

// Snapshotter is the secondary read-through index for the UI layer. Writes
// are best-effort: a failure is logged and never fails the transition that
// produced the snapshot.
type Snapshotter interface {
	StoreLoan(ctx context.Context, l *LoanDTO) error
}

// TransitionRecorder receives committed state transitions for observability.
type TransitionRecorder interface {
	RecordTransition(status loan.Status)
	RecordRepayment(token string, amount int64)
}
