package mysql

import (
	"context"
	"errors"
	"testing"

	ledgerDomain "policylend/internal/domain/ledger"
	loanDomain "policylend/internal/domain/loan"
	"policylend/internal/domain/uow"

	"gorm.io/gorm"
)

var errBoom = errors.New("boom")

func TestWithinTxCommits(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	err := u.WithinTx(ctx, func(r uow.Repos) error {
		return r.Ledger.CreateToken(ctx, &ledgerDomain.Token{Symbol: "USDC", Decimals: 6, MaxLoanAmount: 1})
	})
	if err != nil {
		t.Fatalf("within tx: %v", err)
	}
	if _, err := NewLedgerRepository(db).GetToken(ctx, "USDC"); err != nil {
		t.Fatalf("token not committed: %v", err)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	err := u.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Ledger.CreateToken(ctx, &ledgerDomain.Token{Symbol: "USDC", Decimals: 6, MaxLoanAmount: 1}); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if _, err := NewLedgerRepository(db).GetToken(ctx, "USDC"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("rolled-back token still readable: err = %v", err)
	}
}

func TestWithinLoanTxPassesTheLoan(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	loans := NewLoanRepository(db)
	ctx := context.Background()

	if err := loans.Create(ctx, newLoan("loan-1", "borrower-1", "policy-1", loanDomain.StatusPending)); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := u.WithinLoanTx(ctx, "loan-1", func(r uow.Repos, l *loanDomain.Loan) error {
		if l.LoanID != "loan-1" || l.Status != loanDomain.StatusPending {
			t.Errorf("callback loan %+v", l)
		}
		l.Status = loanDomain.StatusActive
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("within loan tx: %v", err)
	}

	got, err := loans.GetByLoanID(ctx, "loan-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != loanDomain.StatusActive {
		t.Errorf("status = %q, want committed active", got.Status)
	}
}

func TestWithinLoanTxRollsBackEveryWrite(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	loans := NewLoanRepository(db)
	ledger := NewLedgerRepository(db)
	ctx := context.Background()

	if err := loans.Create(ctx, newLoan("loan-1", "borrower-1", "policy-1", loanDomain.StatusPending)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ledger.CreateBalance(ctx, &ledgerDomain.Balance{Account: "pool", Token: "USDC", Amount: 100}); err != nil {
		t.Fatalf("create balance: %v", err)
	}

	err := u.WithinLoanTx(ctx, "loan-1", func(r uow.Repos, l *loanDomain.Loan) error {
		l.Status = loanDomain.StatusActive
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		b, err := r.Ledger.GetBalanceForUpdate(ctx, "pool", "USDC")
		if err != nil {
			return err
		}
		b.Amount = 0
		if err := r.Ledger.SaveBalance(ctx, b); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}

	got, err := loans.GetByLoanID(ctx, "loan-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != loanDomain.StatusPending {
		t.Errorf("status = %q, rollback should keep pending", got.Status)
	}
	b, err := ledger.GetBalance(ctx, "pool", "USDC")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.Amount != 100 {
		t.Errorf("balance = %d, rollback should keep 100", b.Amount)
	}
}

func TestWithinLoanTxUnknownLoan(t *testing.T) {
	u := NewGormUoW(openTestDB(t))
	err := u.WithinLoanTx(context.Background(), "missing", func(uow.Repos, *loanDomain.Loan) error {
		t.Fatal("callback must not run for a missing loan")
		return nil
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
