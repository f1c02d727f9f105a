package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "policylend/internal/adapter/http"
	mw "policylend/internal/adapter/middleware"
	"policylend/internal/adapter/repository/mysql"
	"policylend/internal/config"
	"policylend/internal/domain/access"
	ledgerDomain "policylend/internal/domain/ledger"
	loanDomain "policylend/internal/domain/loan"
	policyDomain "policylend/internal/domain/policy"
	riskDomain "policylend/internal/domain/risk"
	vaultDomain "policylend/internal/domain/vault"
	"policylend/internal/infrastructure/cache"
	"policylend/internal/infrastructure/db"
	ledgeruc "policylend/internal/usecase/ledger"
	loanuc "policylend/internal/usecase/loan"
	policyuc "policylend/internal/usecase/policy"
	riskuc "policylend/internal/usecase/risk"
	"policylend/pkg/metrics"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), logger)
	if err != nil {
		logger.Fatal("open mysql", zap.Error(err))
	}
	if err := gdb.AutoMigrate(
		&policyDomain.Policy{},
		&loanDomain.Loan{},
		&ledgerDomain.Token{},
		&ledgerDomain.Balance{},
		&ledgerDomain.Allowance{},
		&vaultDomain.CollateralRecord{},
		&riskDomain.Parameters{},
		&access.Grant{},
	); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("open redis", zap.Error(err))
	}

	loanRepo := mysql.NewLoanRepository(gdb)
	policyRepo := mysql.NewPolicyRepository(gdb)
	ledgerRepo := mysql.NewLedgerRepository(gdb)
	vaultRepo := mysql.NewVaultRepository(gdb)
	riskRepo := mysql.NewRiskRepository(gdb)
	accessRepo := mysql.NewAccessRepository(gdb)
	guow := mysql.NewGormUoW(gdb)

	if cfg.AdminIdentity != "" {
		if err := accessRepo.Grant(context.Background(), cfg.AdminIdentity, access.RoleAdmin); err != nil {
			logger.Fatal("seed admin role", zap.Error(err))
		}
	}

	collector := metrics.NewCollector()
	snapshots := cache.NewLoanSnapshotStore(rdb, time.Duration(cfg.SnapshotTTLSecs)*time.Second)

	riskEngine := riskuc.NewEngine(policyRepo, riskRepo, ledgerRepo, accessRepo)
	policyRegistry := policyuc.NewRegistry(policyRepo, accessRepo, cfg.VaultAccount, logger)
	ledgerService := ledgeruc.NewService(guow, ledgerRepo, accessRepo, logger)
	loanUsecase := loanuc.NewUsecase(loanuc.Config{
		UoW:          guow,
		Loans:        loanRepo,
		Policies:     policyRepo,
		Vault:        vaultRepo,
		Risk:         riskEngine,
		Auth:         accessRepo,
		Snapshots:    snapshots,
		Metrics:      collector,
		Log:          logger,
		PoolAccount:  cfg.PoolAccount,
		VaultAccount: cfg.VaultAccount,
	})

	h := httpadp.NewHandler()
	loanHandler := httpadp.NewLoanHandler(loanUsecase)
	policyHandler := httpadp.NewPolicyHandler(policyRegistry)
	ledgerHandler := httpadp.NewLedgerHandler(ledgerService)
	riskHandler := httpadp.NewRiskHandler(riskEngine)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	e.Use(mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	e.POST("/loans", loanHandler.RequestLoan)
	e.GET("/loans/:loan_id", loanHandler.GetLoan)
	e.GET("/loans/:loan_id/repayment", loanHandler.GetTotalRepayment)
	e.GET("/loans/:loan_id/collateral", loanHandler.GetCollateralInfo)
	e.POST("/loans/:loan_id/activate", loanHandler.ActivateLoan)
	e.POST("/loans/:loan_id/repay", loanHandler.RepayLoan)
	e.POST("/loans/:loan_id/liquidate", loanHandler.LiquidateLoan)
	e.POST("/loans/:loan_id/default", loanHandler.MarkDefaulted)
	e.GET("/borrowers/:borrower_id/loans", loanHandler.ListBorrowerLoans)

	e.POST("/policies", policyHandler.MintPolicy)
	e.GET("/policies/:policy_id", policyHandler.GetPolicy)
	e.POST("/policies/:policy_id/transfer", policyHandler.TransferPolicy)
	e.PUT("/oracle/policies/:policy_number/valuation", policyHandler.SetPolicyValuation)
	e.PUT("/oracle/policies/:policy_number/expiry", policyHandler.SetPolicyExpiryDate)
	e.PUT("/oracle/policies/:policy_number/status", policyHandler.SetPolicyStatus)

	e.POST("/tokens", ledgerHandler.AddToken)
	e.POST("/tokens/:symbol/mint", ledgerHandler.MintTokens)
	e.POST("/tokens/:symbol/transfer", ledgerHandler.Transfer)
	e.POST("/tokens/:symbol/approve", ledgerHandler.Approve)
	e.GET("/tokens/:symbol/balances/:account", ledgerHandler.GetBalance)

	e.POST("/risk-parameters", riskHandler.SetRiskParameters)
	e.POST("/risk/assess", riskHandler.AssessRisk)

	addr := ":" + cfg.AppPort
	logger.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
