package mysql

import (
	"context"

	vaultDomain "policylend/internal/domain/vault"

	"gorm.io/gorm"
)

type VaultRepository struct{ db *gorm.DB }

func NewVaultRepository(db *gorm.DB) *VaultRepository { return &VaultRepository{db: db} }

func (r *VaultRepository) Create(ctx context.Context, rec *vaultDomain.CollateralRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *VaultRepository) Save(ctx context.Context, rec *vaultDomain.CollateralRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *VaultRepository) GetByLoanID(ctx context.Context, loanID string) (*vaultDomain.CollateralRecord, error) {
	var out vaultDomain.CollateralRecord
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}
