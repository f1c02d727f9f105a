package mysql

import (
	"testing"

	"policylend/internal/domain/access"
	ledgerDomain "policylend/internal/domain/ledger"
	loanDomain "policylend/internal/domain/loan"
	policyDomain "policylend/internal/domain/policy"
	riskDomain "policylend/internal/domain/risk"
	vaultDomain "policylend/internal/domain/vault"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&loanDomain.Loan{},
		&policyDomain.Policy{},
		&ledgerDomain.Token{},
		&ledgerDomain.Balance{},
		&ledgerDomain.Allowance{},
		&vaultDomain.CollateralRecord{},
		&riskDomain.Parameters{},
		&access.Grant{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
