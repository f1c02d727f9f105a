package mysql

import (
	"context"

	policyDomain "policylend/internal/domain/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func (r *PolicyRepository) Create(ctx context.Context, p *policyDomain.Policy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PolicyRepository) Save(ctx context.Context, p *policyDomain.Policy) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PolicyRepository) GetByPolicyID(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	var out policyDomain.Policy
	res := r.db.WithContext(ctx).Where("policy_id = ?", policyID).First(&out)
	return &out, res.Error
}

func (r *PolicyRepository) GetByPolicyIDForUpdate(ctx context.Context, policyID string) (*policyDomain.Policy, error) {
	var out policyDomain.Policy
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("policy_id = ?", policyID).
		First(&out)
	return &out, res.Error
}

func (r *PolicyRepository) GetByPolicyNumber(ctx context.Context, policyNumber string) (*policyDomain.Policy, error) {
	var out policyDomain.Policy
	res := r.db.WithContext(ctx).Where("policy_number = ?", policyNumber).First(&out)
	return &out, res.Error
}
