package policy

import (
	"context"
	"errors"
	"time"

	"policylend/internal/domain/access"
	"policylend/internal/domain/policy"
	"policylend/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidInput = errors.New("invalid policy input")

// Registry owns tokenized-policy records. Oracle updates arrive here
// asynchronously relative to loan transitions; the loan core only ever reads
// the latest committed state.
type Registry struct {
	policies     policy.Repository
	auth         access.Authorizer
	vaultAccount string
	log          *zap.Logger
	now          func() time.Time
}

func NewRegistry(policies policy.Repository, auth access.Authorizer, vaultAccount string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{policies: policies, auth: auth, vaultAccount: vaultAccount, log: log, now: time.Now}
}

type MintInput struct {
	Owner           string `json:"owner"`
	PolicyNumber    string `json:"policy_number"`
	Issuer          string `json:"issuer"`
	CollateralClass string `json:"collateral_class"`
	Valuation       int64  `json:"valuation"`
	ExpiryDate      int64  `json:"expiry_date"`
	DocumentHash    string `json:"document_hash"`
}

func (r *Registry) Mint(ctx context.Context, caller string, in MintInput) (*policy.Policy, error) {
	if err := access.Require(ctx, r.auth, caller, access.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Owner == "" || in.PolicyNumber == "" || in.CollateralClass == "" || in.Valuation < 0 {
		return nil, ErrInvalidInput
	}
	if in.DocumentHash == "" {
		return nil, ErrInvalidInput
	}
	if in.ExpiryDate <= r.now().Unix() {
		return nil, policy.ErrInvalidExpiry
	}

	p := &policy.Policy{
		PolicyID:        id.NewID32(),
		PolicyNumber:    in.PolicyNumber,
		Owner:           in.Owner,
		Issuer:          in.Issuer,
		CollateralClass: in.CollateralClass,
		Valuation:       in.Valuation,
		ExpiryDate:      in.ExpiryDate,
		DocumentHash:    in.DocumentHash,
		Status:          policy.StatusActive,
	}
	if err := r.policies.Create(ctx, p); err != nil {
		return nil, err
	}
	r.log.Info("policy minted",
		zap.String("policy_id", p.PolicyID),
		zap.String("owner", p.Owner),
		zap.Int64("valuation", p.Valuation))
	return p, nil
}

func (r *Registry) Get(ctx context.Context, policyID string) (*policy.Policy, error) {
	p, err := r.policies.GetByPolicyID(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Transfer moves ownership. Vault-held policies only move when the vault
// itself is the caller; that custody lock is what enforces "one active loan
// per policy".
func (r *Registry) Transfer(ctx context.Context, caller, policyID, from, to string) (*policy.Policy, error) {
	if to == "" {
		return nil, ErrInvalidInput
	}
	p, err := r.policies.GetByPolicyIDForUpdate(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ErrNotFound
		}
		return nil, err
	}
	if p.Owner != from {
		return nil, policy.ErrNotOwner
	}
	if p.Owner == r.vaultAccount && caller != r.vaultAccount {
		return nil, policy.ErrNotTransferable
	}
	p.Owner = to
	if err := r.policies.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Oracle push interface: updates keyed by policy number, idempotent per call.
// Valuation drops do not trigger margin calls here; liquidation reacts to
// loan maturity only.

func (r *Registry) SetValuationByNumber(ctx context.Context, caller, policyNumber string, valuation int64) error {
	if valuation < 0 {
		return ErrInvalidInput
	}
	return r.oracleUpdate(ctx, caller, policyNumber, func(p *policy.Policy) { p.Valuation = valuation })
}

func (r *Registry) SetExpiryDateByNumber(ctx context.Context, caller, policyNumber string, expiry int64) error {
	if expiry <= 0 {
		return ErrInvalidInput
	}
	return r.oracleUpdate(ctx, caller, policyNumber, func(p *policy.Policy) { p.ExpiryDate = expiry })
}

func (r *Registry) SetStatusByNumber(ctx context.Context, caller, policyNumber string, status policy.Status) error {
	switch status {
	case policy.StatusActive, policy.StatusExpired, policy.StatusDefaulted, policy.StatusClaimed, policy.StatusCancelled:
	default:
		return ErrInvalidInput
	}
	return r.oracleUpdate(ctx, caller, policyNumber, func(p *policy.Policy) { p.Status = status })
}

func (r *Registry) oracleUpdate(ctx context.Context, caller, policyNumber string, apply func(*policy.Policy)) error {
	if err := access.Require(ctx, r.auth, caller, access.RoleOracle); err != nil {
		return err
	}
	p, err := r.policies.GetByPolicyNumber(ctx, policyNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.ErrNotFound
		}
		return err
	}
	apply(p)
	if err := r.policies.Save(ctx, p); err != nil {
		return err
	}
	r.log.Info("oracle update applied",
		zap.String("policy_number", policyNumber),
		zap.String("policy_id", p.PolicyID))
	return nil
}
