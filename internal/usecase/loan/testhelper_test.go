package loan

import (
	"context"
	"strings"
	"testing"
	"time"

	"policylend/internal/adapter/repository/mysql"
	"policylend/internal/domain/access"
	ledgerDomain "policylend/internal/domain/ledger"
	loanDomain "policylend/internal/domain/loan"
	policyDomain "policylend/internal/domain/policy"
	riskDomain "policylend/internal/domain/risk"
	vaultDomain "policylend/internal/domain/vault"
	"policylend/internal/testutil/accessmock"
	riskuc "policylend/internal/usecase/risk"
	"policylend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testBorrower   = strings.Repeat("b", 32)
	testLiquidator = strings.Repeat("c", 32)
	testPool       = strings.Repeat("f", 32)
	testVault      = strings.Repeat("e", 32)

	testToken = "USDC"
	testClass = "term-life"
)

// stack wires the usecase over an in-memory sqlite database with real
// repositories and a controllable clock.
type stack struct {
	db       *gorm.DB
	uc       *Usecase
	engine   *riskuc.Engine
	loans    *mysql.LoanRepository
	policies *mysql.PolicyRepository
	ledger   *mysql.LedgerRepository

	nowUnix int64
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&policyDomain.Policy{},
		&loanDomain.Loan{},
		&ledgerDomain.Token{},
		&ledgerDomain.Balance{},
		&ledgerDomain.Allowance{},
		&vaultDomain.CollateralRecord{},
		&riskDomain.Parameters{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	s := &stack{
		db:       db,
		loans:    mysql.NewLoanRepository(db),
		policies: mysql.NewPolicyRepository(db),
		ledger:   mysql.NewLedgerRepository(db),
		nowUnix:  time.Now().Unix(),
	}

	auth := accessmock.New(map[string][]access.Role{
		testLiquidator: {access.RoleLiquidator},
	})
	s.engine = riskuc.NewEngine(s.policies, mysql.NewRiskRepository(db), s.ledger, auth)

	s.uc = NewUsecase(Config{
		UoW:          mysql.NewGormUoW(db),
		Loans:        s.loans,
		Policies:     s.policies,
		Vault:        mysql.NewVaultRepository(db),
		Risk:         s.engine,
		Auth:         auth,
		PoolAccount:  testPool,
		VaultAccount: testVault,
	})
	s.uc.now = func() time.Time { return time.Unix(s.nowUnix, 0) }
	return s
}

func (s *stack) advance(secs int64) { s.nowUnix += secs }

func (s *stack) seedDefaults(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	if err := s.ledger.CreateToken(ctx, &ledgerDomain.Token{
		Symbol: testToken, Decimals: 6, MinLoanAmount: 1_000, MaxLoanAmount: 10_000_000,
	}); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := mysql.NewRiskRepository(s.db).Create(ctx, &riskDomain.Parameters{
		CollateralClass:         testClass,
		Version:                 1,
		MaxLTVBps:               7_000,
		LiquidationThresholdBps: 8_500,
		BaseInterestRateBps:     500,
	}); err != nil {
		t.Fatalf("seed risk params: %v", err)
	}
	if err := s.ledger.CreateBalance(ctx, &ledgerDomain.Balance{
		Account: testPool, Token: testToken, Amount: 1_000_000,
	}); err != nil {
		t.Fatalf("seed pool balance: %v", err)
	}
	return s.seedPolicy(t, 100_000)
}

func (s *stack) seedPolicy(t *testing.T, valuation int64) string {
	t.Helper()
	p := &policyDomain.Policy{
		PolicyID:        id.NewID32(),
		PolicyNumber:    "POL-" + id.NewID32()[:8],
		Owner:           testBorrower,
		Issuer:          "acme-life",
		CollateralClass: testClass,
		Valuation:       valuation,
		ExpiryDate:      s.nowUnix + 5*secondsPerYear,
		DocumentHash:    "sha256:" + id.NewID32(),
		Status:          policyDomain.StatusActive,
	}
	if err := s.policies.Create(context.Background(), p); err != nil {
		t.Fatalf("seed policy: %v", err)
	}
	return p.PolicyID
}

func (s *stack) balance(t *testing.T, account string) int64 {
	t.Helper()
	b, err := s.ledger.GetBalance(context.Background(), account, testToken)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0
		}
		t.Fatalf("get balance: %v", err)
	}
	return b.Amount
}

func (s *stack) credit(t *testing.T, account string, amount int64) {
	t.Helper()
	ctx := context.Background()
	b, err := s.ledger.GetBalance(ctx, account, testToken)
	if err == gorm.ErrRecordNotFound {
		b = &ledgerDomain.Balance{Account: account, Token: testToken}
		if err := s.ledger.CreateBalance(ctx, b); err != nil {
			t.Fatalf("create balance: %v", err)
		}
	} else if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	b.Amount += amount
	if err := s.ledger.SaveBalance(ctx, b); err != nil {
		t.Fatalf("save balance: %v", err)
	}
}

func (s *stack) approveRepayment(t *testing.T, owner string, amount int64) {
	t.Helper()
	ctx := context.Background()
	if err := s.ledger.CreateAllowance(ctx, &ledgerDomain.Allowance{
		Owner: owner, Spender: testPool, Token: testToken, Amount: amount,
	}); err != nil {
		t.Fatalf("seed allowance: %v", err)
	}
}

func (s *stack) policyOwner(t *testing.T, policyID string) string {
	t.Helper()
	p, err := s.policies.GetByPolicyID(context.Background(), policyID)
	if err != nil {
		t.Fatalf("get policy: %v", err)
	}
	return p.Owner
}

// requestAndActivate walks a loan to active with the given principal and
// duration, returning its id.
func (s *stack) requestAndActivate(t *testing.T, policyID string, principal, duration int64) string {
	t.Helper()
	ctx := context.Background()
	dto, err := s.uc.Request(ctx, RequestLoanInput{
		Borrower:     testBorrower,
		PolicyID:     policyID,
		Amount:       principal,
		DurationSecs: duration,
		Token:        testToken,
	})
	if err != nil {
		t.Fatalf("request loan: %v", err)
	}
	if _, err := s.uc.Activate(ctx, testBorrower, dto.LoanID); err != nil {
		t.Fatalf("activate loan: %v", err)
	}
	return dto.LoanID
}
