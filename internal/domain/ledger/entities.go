package ledger

import (
	"errors"
	"time"
)

var (
	ErrTokenExists           = errors.New("token already registered")
	ErrUnknownToken          = errors.New("token not registered")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrAmountOutOfBounds     = errors.New("amount outside the token's loan bounds")
)

// Token is a registered stablecoin. Min/MaxLoanAmount bound Loan.Principal at
// request time, in the token's smallest unit.
type Token struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	Symbol        string    `gorm:"size:16;uniqueIndex:ux_tokens_symbol" json:"symbol"`
	Decimals      int       `gorm:"not null" json:"decimals"`
	MinLoanAmount int64     `gorm:"not null" json:"min_loan_amount"`
	MaxLoanAmount int64     `gorm:"not null" json:"max_loan_amount"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Token) TableName() string { return "tokens" }

// Balance rows are created lazily on first credit.
type Balance struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Account   string    `gorm:"size:32;uniqueIndex:ux_balances_account_token" json:"account"`
	Token     string    `gorm:"size:16;uniqueIndex:ux_balances_account_token" json:"token"`
	Amount    int64     `gorm:"default:0" json:"amount"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Balance) TableName() string { return "balances" }

type Allowance struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Owner     string    `gorm:"size:32;uniqueIndex:ux_allowances_owner_spender_token" json:"owner"`
	Spender   string    `gorm:"size:32;uniqueIndex:ux_allowances_owner_spender_token" json:"spender"`
	Token     string    `gorm:"size:16;uniqueIndex:ux_allowances_owner_spender_token" json:"token"`
	Amount    int64     `gorm:"default:0" json:"amount"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Allowance) TableName() string { return "allowances" }
