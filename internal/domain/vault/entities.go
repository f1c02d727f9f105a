package vault

import (
	"errors"
	"time"
)

var (
	ErrAlreadyDeposited = errors.New("collateral already deposited for loan")
	ErrNoCollateral     = errors.New("no collateral held for loan")
)

// CollateralRecord is the single source of truth for whether a loan's
// collateral is currently locked. One record per loan id.
type CollateralRecord struct {
	ID          uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID      string     `gorm:"size:32;uniqueIndex:ux_collateral_loan" json:"loan_id"`
	PolicyID    string     `gorm:"size:32;index:idx_collateral_policy" json:"policy_id"`
	Depositor   string     `gorm:"size:32" json:"depositor"`
	IsDeposited bool       `gorm:"default:false" json:"is_deposited"`
	DepositedAt time.Time  `gorm:"autoCreateTime" json:"deposited_at"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
}

func (CollateralRecord) TableName() string { return "collateral_records" }
