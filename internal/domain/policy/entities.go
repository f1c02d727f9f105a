package policy

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("policy not found")
	ErrInvalidExpiry   = errors.New("policy expiry must be in the future")
	ErrNotOwner        = errors.New("caller does not own the policy")
	ErrNotTransferable = errors.New("policy is locked as collateral")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusDefaulted Status = "defaulted"
	StatusClaimed   Status = "claimed"
	StatusCancelled Status = "cancelled"
)

// Policy is a tokenized insurance policy usable as loan collateral.
// Valuation is in the smallest unit of the settlement token; ExpiryDate is
// unix seconds. Policies are never hard-deleted: terminal states are Status
// transitions.
type Policy struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	PolicyID        string         `gorm:"size:32;uniqueIndex:ux_policies_policy_id_active" json:"policy_id"`
	PolicyNumber    string         `gorm:"size:64;uniqueIndex:ux_policies_number_active" json:"policy_number"`
	Owner           string         `gorm:"size:32;index:idx_policies_owner" json:"owner"`
	Issuer          string         `gorm:"size:64" json:"issuer"`
	CollateralClass string         `gorm:"size:64;index:idx_policies_class" json:"collateral_class"`
	Valuation       int64          `gorm:"not null" json:"valuation"`
	ExpiryDate      int64          `gorm:"not null" json:"expiry_date"`
	DocumentHash    string         `gorm:"size:128;not null" json:"document_hash"`
	Status          Status         `gorm:"size:16;default:'active'" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Policy) TableName() string { return "policies" }
