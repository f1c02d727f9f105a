package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"policylend/internal/domain/access"
	ledgerDomain "policylend/internal/domain/ledger"
	policyDomain "policylend/internal/domain/policy"
	riskDomain "policylend/internal/domain/risk"
	"policylend/internal/testutil/accessmock"
	"policylend/internal/testutil/policymock"

	"gorm.io/gorm"
)

var errMockUnimplemented = errors.New("mock: method not implemented")

type paramsRepoMock struct {
	CreateFn           func(ctx context.Context, p *riskDomain.Parameters) error
	GetLatestByClassFn func(ctx context.Context, class string) (*riskDomain.Parameters, error)
}

func (m *paramsRepoMock) Create(ctx context.Context, p *riskDomain.Parameters) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *paramsRepoMock) GetLatestByClass(ctx context.Context, class string) (*riskDomain.Parameters, error) {
	if m.GetLatestByClassFn != nil {
		return m.GetLatestByClassFn(ctx, class)
	}
	return nil, errMockUnimplemented
}

type tokenRepoMock struct {
	ledgerDomain.Repository
	GetTokenFn func(ctx context.Context, symbol string) (*ledgerDomain.Token, error)
}

func (m *tokenRepoMock) GetToken(ctx context.Context, symbol string) (*ledgerDomain.Token, error) {
	if m.GetTokenFn != nil {
		return m.GetTokenFn(ctx, symbol)
	}
	return nil, errMockUnimplemented
}

const (
	testBorrower = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testAdmin    = "dddddddddddddddddddddddddddddddd"
	testClass    = "term-life"
	baseUnix     = int64(1_700_000_000)
)

func fixedEngine(policies policyDomain.Repository, params riskDomain.Repository, tokens ledgerDomain.Repository, auth access.Authorizer) *Engine {
	e := NewEngine(policies, params, tokens, auth)
	e.now = func() time.Time { return time.Unix(baseUnix, 0) }
	return e
}

func healthyPolicy() *policyDomain.Policy {
	return &policyDomain.Policy{
		PolicyID:        "p1",
		Owner:           testBorrower,
		CollateralClass: testClass,
		Valuation:       100_000,
		ExpiryDate:      baseUnix + 10*31_536_000,
		Status:          policyDomain.StatusActive,
	}
}

func healthyParams() *riskDomain.Parameters {
	return &riskDomain.Parameters{
		CollateralClass:         testClass,
		Version:                 1,
		MaxLTVBps:               7_000,
		LiquidationThresholdBps: 8_500,
		BaseInterestRateBps:     500,
	}
}

func healthyToken() *ledgerDomain.Token {
	return &ledgerDomain.Token{Symbol: "USDC", Decimals: 6, MinLoanAmount: 1_000, MaxLoanAmount: 10_000_000}
}

func request(amount int64) AssessInput {
	return AssessInput{
		Borrower:     testBorrower,
		PolicyID:     "p1",
		Amount:       amount,
		DurationSecs: 2_592_000,
		Token:        "USDC",
	}
}

func TestAssessApprovesWithinCap(t *testing.T) {
	e := fixedEngine(
		&policymock.Repo{GetByPolicyIDFn: func(context.Context, string) (*policyDomain.Policy, error) {
			return healthyPolicy(), nil
		}},
		&paramsRepoMock{GetLatestByClassFn: func(context.Context, string) (*riskDomain.Parameters, error) {
			return healthyParams(), nil
		}},
		&tokenRepoMock{GetTokenFn: func(context.Context, string) (*ledgerDomain.Token, error) {
			return healthyToken(), nil
		}},
		accessmock.AllowAll(),
	)

	a, err := e.Assess(context.Background(), request(70_000))
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !a.Approved {
		t.Error("request at the LTV cap should be approved")
	}
	if a.MaxLoanAmount != 70_000 {
		t.Errorf("max loan = %d, want 70000", a.MaxLoanAmount)
	}
	if a.InterestRateBps != 500 {
		t.Errorf("rate = %d, want 500", a.InterestRateBps)
	}
}

func TestAssessRejects(t *testing.T) {
	tests := []struct {
		name   string
		policy func(*policyDomain.Policy)
		token  func(*ledgerDomain.Token)
		in     AssessInput
	}{
		{
			name: "amount over LTV cap",
			in:   request(70_001),
		},
		{
			name:   "policy expires inside the loan window",
			policy: func(p *policyDomain.Policy) { p.ExpiryDate = baseUnix + 86_400 },
			in:     request(50_000),
		},
		{
			name:   "policy not active",
			policy: func(p *policyDomain.Policy) { p.Status = policyDomain.StatusCancelled },
			in:     request(50_000),
		},
		{
			name: "below token minimum",
			in:   request(999),
		},
		{
			name:  "above token maximum",
			token: func(tok *ledgerDomain.Token) { tok.MaxLoanAmount = 40_000 },
			in:    request(50_000),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := healthyPolicy()
			if tt.policy != nil {
				tt.policy(p)
			}
			tok := healthyToken()
			if tt.token != nil {
				tt.token(tok)
			}
			e := fixedEngine(
				&policymock.Repo{GetByPolicyIDFn: func(context.Context, string) (*policyDomain.Policy, error) { return p, nil }},
				&paramsRepoMock{GetLatestByClassFn: func(context.Context, string) (*riskDomain.Parameters, error) { return healthyParams(), nil }},
				&tokenRepoMock{GetTokenFn: func(context.Context, string) (*ledgerDomain.Token, error) { return tok, nil }},
				accessmock.AllowAll(),
			)
			a, err := e.Assess(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("assess: %v", err)
			}
			if a.Approved {
				t.Error("want rejection")
			}
		})
	}
}

func TestAssessErrors(t *testing.T) {
	notFoundPolicies := &policymock.Repo{GetByPolicyIDFn: func(context.Context, string) (*policyDomain.Policy, error) {
		return nil, gorm.ErrRecordNotFound
	}}
	foundPolicies := &policymock.Repo{GetByPolicyIDFn: func(context.Context, string) (*policyDomain.Policy, error) {
		return healthyPolicy(), nil
	}}
	foundParams := &paramsRepoMock{GetLatestByClassFn: func(context.Context, string) (*riskDomain.Parameters, error) {
		return healthyParams(), nil
	}}

	t.Run("unknown policy", func(t *testing.T) {
		e := fixedEngine(notFoundPolicies, &paramsRepoMock{}, &tokenRepoMock{}, accessmock.AllowAll())
		if _, err := e.Assess(context.Background(), request(50_000)); !errors.Is(err, riskDomain.ErrUnknownCollateral) {
			t.Fatalf("err = %v, want ErrUnknownCollateral", err)
		}
	})

	t.Run("parameters never set for class", func(t *testing.T) {
		params := &paramsRepoMock{GetLatestByClassFn: func(context.Context, string) (*riskDomain.Parameters, error) {
			return nil, gorm.ErrRecordNotFound
		}}
		e := fixedEngine(foundPolicies, params, &tokenRepoMock{}, accessmock.AllowAll())
		if _, err := e.Assess(context.Background(), request(50_000)); !errors.Is(err, riskDomain.ErrParametersNotSet) {
			t.Fatalf("err = %v, want ErrParametersNotSet", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		tokens := &tokenRepoMock{GetTokenFn: func(context.Context, string) (*ledgerDomain.Token, error) {
			return nil, gorm.ErrRecordNotFound
		}}
		e := fixedEngine(foundPolicies, foundParams, tokens, accessmock.AllowAll())
		if _, err := e.Assess(context.Background(), request(50_000)); !errors.Is(err, ledgerDomain.ErrUnknownToken) {
			t.Fatalf("err = %v, want ErrUnknownToken", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		e := fixedEngine(foundPolicies, foundParams, &tokenRepoMock{}, accessmock.AllowAll())
		if _, err := e.Assess(context.Background(), request(0)); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("err = %v, want ErrInvalidRequest", err)
		}
		in := request(50_000)
		in.DurationSecs = 0
		if _, err := e.Assess(context.Background(), in); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("zero duration: err = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestSetParametersAppendsVersions(t *testing.T) {
	auth := accessmock.New(map[string][]access.Role{testAdmin: {access.RoleAdmin}})

	t.Run("first version for a class", func(t *testing.T) {
		var created *riskDomain.Parameters
		params := &paramsRepoMock{
			GetLatestByClassFn: func(context.Context, string) (*riskDomain.Parameters, error) {
				return nil, gorm.ErrRecordNotFound
			},
			CreateFn: func(_ context.Context, p *riskDomain.Parameters) error {
				created = p
				return nil
			},
		}
		e := fixedEngine(&policymock.Repo{}, params, &tokenRepoMock{}, auth)
		got, err := e.SetParameters(context.Background(), testAdmin, *healthyParams())
		if err != nil {
			t.Fatalf("set parameters: %v", err)
		}
		if got.Version != 1 || created == nil || created.Version != 1 {
			t.Errorf("version = %d, want 1", got.Version)
		}
	})

	t.Run("appends after the latest version", func(t *testing.T) {
		params := &paramsRepoMock{
			GetLatestByClassFn: func(context.Context, string) (*riskDomain.Parameters, error) {
				latest := healthyParams()
				latest.Version = 3
				return latest, nil
			},
		}
		e := fixedEngine(&policymock.Repo{}, params, &tokenRepoMock{}, auth)
		got, err := e.SetParameters(context.Background(), testAdmin, *healthyParams())
		if err != nil {
			t.Fatalf("set parameters: %v", err)
		}
		if got.Version != 4 {
			t.Errorf("version = %d, want 4", got.Version)
		}
	})

	t.Run("threshold must exceed max LTV", func(t *testing.T) {
		bad := healthyParams()
		bad.LiquidationThresholdBps = bad.MaxLTVBps
		e := fixedEngine(&policymock.Repo{}, &paramsRepoMock{}, &tokenRepoMock{}, auth)
		if _, err := e.SetParameters(context.Background(), testAdmin, *bad); !errors.Is(err, riskDomain.ErrInvalidParameters) {
			t.Fatalf("err = %v, want ErrInvalidParameters", err)
		}
	})

	t.Run("requires admin role", func(t *testing.T) {
		e := fixedEngine(&policymock.Repo{}, &paramsRepoMock{}, &tokenRepoMock{}, auth)
		if _, err := e.SetParameters(context.Background(), testBorrower, *healthyParams()); !errors.Is(err, access.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})
}
