package risk

import (
	"errors"
	"time"
)

var (
	ErrUnknownCollateral = errors.New("collateral does not resolve to a policy")
	ErrParametersNotSet  = errors.New("no risk parameters for collateral class")
	ErrInvalidParameters = errors.New("liquidation threshold must exceed max LTV and max LTV must be positive")
)

// Parameters is one version of the admin-set risk configuration for a
// collateral class. Updates append a new version; loans snapshot the rate in
// force at request time, so older versions stay immutable.
type Parameters struct {
	ID                      uint64    `gorm:"primaryKey;column:id" json:"-"`
	CollateralClass         string    `gorm:"size:64;uniqueIndex:ux_risk_class_version" json:"collateral_class"`
	Version                 int       `gorm:"uniqueIndex:ux_risk_class_version" json:"version"`
	MaxLTVBps               int64     `gorm:"not null" json:"max_ltv_bps"`
	LiquidationThresholdBps int64     `gorm:"not null" json:"liquidation_threshold_bps"`
	BaseInterestRateBps     int64     `gorm:"not null" json:"base_interest_rate_bps"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Parameters) TableName() string { return "risk_parameters" }

// Validate checks the invariant liquidationThreshold > maxLTV > 0.
func (p *Parameters) Validate() error {
	if p.MaxLTVBps <= 0 || p.MaxLTVBps > 10_000 {
		return ErrInvalidParameters
	}
	if p.LiquidationThresholdBps <= p.MaxLTVBps {
		return ErrInvalidParameters
	}
	if p.BaseInterestRateBps < 0 {
		return ErrInvalidParameters
	}
	return nil
}
