package risk

import (
	"context"
	"errors"
	"math"
	"math/big"
	"time"

	"policylend/internal/domain/access"
	"policylend/internal/domain/ledger"
	"policylend/internal/domain/policy"
	"policylend/internal/domain/risk"

	"gorm.io/gorm"
)

var ErrInvalidRequest = errors.New("amount and duration must be positive")

const bpsDenominator = 10_000

// Engine evaluates loan requests against the latest committed policy
// valuation and risk parameters. Pure read path: no state is mutated by an
// assessment.
type Engine struct {
	policies policy.Repository
	params   risk.Repository
	tokens   ledger.Repository
	auth     access.Authorizer
	now      func() time.Time
}

func NewEngine(policies policy.Repository, params risk.Repository, tokens ledger.Repository, auth access.Authorizer) *Engine {
	return &Engine{policies: policies, params: params, tokens: tokens, auth: auth, now: time.Now}
}

type AssessInput struct {
	Borrower     string `json:"borrower"`
	PolicyID     string `json:"policy_id"`
	Amount       int64  `json:"amount"`
	DurationSecs int64  `json:"duration_secs"`
	Token        string `json:"token"`
}

type Assessment struct {
	Approved        bool  `json:"approved"`
	MaxLoanAmount   int64 `json:"max_loan_amount"`
	InterestRateBps int64 `json:"interest_rate_bps"`
}

// Assess returns the approval decision and the LTV-capped maximum for the
// policy backing the request. A rejection still reports MaxLoanAmount so
// callers can size a retry.
func (e *Engine) Assess(ctx context.Context, in AssessInput) (*Assessment, error) {
	if in.Amount <= 0 || in.DurationSecs <= 0 {
		return nil, ErrInvalidRequest
	}

	p, err := e.policies.GetByPolicyID(ctx, in.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, risk.ErrUnknownCollateral
		}
		return nil, err
	}

	params, err := e.params.GetLatestByClass(ctx, p.CollateralClass)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, risk.ErrParametersNotSet
		}
		return nil, err
	}

	token, err := e.tokens.GetToken(ctx, in.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrUnknownToken
		}
		return nil, err
	}

	maxLoan := maxLoanAmount(p.Valuation, params.MaxLTVBps)
	out := &Assessment{MaxLoanAmount: maxLoan, InterestRateBps: params.BaseInterestRateBps}

	now := e.now().Unix()
	switch {
	case p.Status != policy.StatusActive:
	case in.Amount > maxLoan:
	case p.ExpiryDate < now+in.DurationSecs:
	case in.Amount < token.MinLoanAmount || in.Amount > token.MaxLoanAmount:
	default:
		out.Approved = true
	}
	return out, nil
}

// SetParameters appends a new version of the risk configuration for a
// collateral class. Only future loan requests observe the new version.
func (e *Engine) SetParameters(ctx context.Context, caller string, p risk.Parameters) (*risk.Parameters, error) {
	if err := access.Require(ctx, e.auth, caller, access.RoleAdmin); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.Version = 1
	if latest, err := e.params.GetLatestByClass(ctx, p.CollateralClass); err == nil {
		p.Version = latest.Version + 1
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := e.params.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// maxLoanAmount computes floor(valuation * maxLTV / 10000) in big.Int so a
// large valuation cannot overflow, clamped to int64.
func maxLoanAmount(valuation, maxLTVBps int64) int64 {
	if valuation <= 0 || maxLTVBps <= 0 {
		return 0
	}
	v := new(big.Int).Mul(big.NewInt(valuation), big.NewInt(maxLTVBps))
	v.Quo(v, big.NewInt(bpsDenominator))
	if !v.IsInt64() {
		return math.MaxInt64
	}
	return v.Int64()
}
