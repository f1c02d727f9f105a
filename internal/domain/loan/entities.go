package loan

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound              = errors.New("loan not found")
	ErrInvalidState          = errors.New("loan is not in a valid state for this transition")
	ErrRiskRejected          = errors.New("loan request rejected by risk assessment")
	ErrOverRepayment         = errors.New("repayment exceeds the remaining balance")
	ErrNotYetDefaulted       = errors.New("loan has not passed its end time")
	ErrCollateralUnavailable = errors.New("collateral could not be deposited")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusDefaulted  Status = "defaulted"
	StatusLiquidated Status = "liquidated"
)

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusRepaid || s == StatusLiquidated
}

// Loan is the central lifecycle entity. Principal and RepaidAmount are in the
// smallest unit of the loan's stablecoin; InterestRateBps is an annualized
// rate in basis points, snapshotted from the risk parameters at request time
// and never re-read afterwards. StartTime/EndTime are unix seconds and stay
// zero while the loan is pending.
type Loan struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string         `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	Borrower        string         `gorm:"size:32;index:idx_loans_borrower_active" json:"borrower"`
	PolicyID        string         `gorm:"size:32;index:idx_loans_policy" json:"policy_id"`
	CollateralClass string         `gorm:"size:64" json:"collateral_class"`
	Principal       int64          `gorm:"not null" json:"principal"`
	InterestRateBps int64          `gorm:"not null" json:"interest_rate_bps"`
	Token           string         `gorm:"size:16;not null" json:"token"`
	StartTime       int64          `gorm:"default:0" json:"start_time"`
	DurationSecs    int64          `gorm:"not null" json:"duration_secs"`
	EndTime         int64          `gorm:"default:0" json:"end_time"`
	RepaidAmount    int64          `gorm:"default:0" json:"repaid_amount"`
	Status          Status         `gorm:"size:16;default:'pending'" json:"status"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }
