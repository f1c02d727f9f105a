package mysql

import (
	"context"

	riskDomain "policylend/internal/domain/risk"

	"gorm.io/gorm"
)

type RiskRepository struct{ db *gorm.DB }

func NewRiskRepository(db *gorm.DB) *RiskRepository { return &RiskRepository{db: db} }

func (r *RiskRepository) Create(ctx context.Context, p *riskDomain.Parameters) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *RiskRepository) GetLatestByClass(ctx context.Context, collateralClass string) (*riskDomain.Parameters, error) {
	var out riskDomain.Parameters
	res := r.db.WithContext(ctx).
		Where("collateral_class = ?", collateralClass).
		Order("version DESC").
		First(&out)
	return &out, res.Error
}
