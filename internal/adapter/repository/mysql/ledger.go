package mysql

import (
	"context"

	ledgerDomain "policylend/internal/domain/ledger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) CreateToken(ctx context.Context, t *ledgerDomain.Token) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LedgerRepository) GetToken(ctx context.Context, symbol string) (*ledgerDomain.Token, error) {
	var out ledgerDomain.Token
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) GetBalance(ctx context.Context, account, token string) (*ledgerDomain.Balance, error) {
	var out ledgerDomain.Balance
	res := r.db.WithContext(ctx).
		Where("account = ? AND token = ?", account, token).
		First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) GetBalanceForUpdate(ctx context.Context, account, token string) (*ledgerDomain.Balance, error) {
	var out ledgerDomain.Balance
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ? AND token = ?", account, token).
		First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) CreateBalance(ctx context.Context, b *ledgerDomain.Balance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *LedgerRepository) SaveBalance(ctx context.Context, b *ledgerDomain.Balance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *LedgerRepository) GetAllowance(ctx context.Context, owner, spender, token string) (*ledgerDomain.Allowance, error) {
	var out ledgerDomain.Allowance
	res := r.db.WithContext(ctx).
		Where("owner = ? AND spender = ? AND token = ?", owner, spender, token).
		First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) GetAllowanceForUpdate(ctx context.Context, owner, spender, token string) (*ledgerDomain.Allowance, error) {
	var out ledgerDomain.Allowance
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND spender = ? AND token = ?", owner, spender, token).
		First(&out)
	return &out, res.Error
}

func (r *LedgerRepository) CreateAllowance(ctx context.Context, a *ledgerDomain.Allowance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *LedgerRepository) SaveAllowance(ctx context.Context, a *ledgerDomain.Allowance) error {
	return r.db.WithContext(ctx).Save(a).Error
}
