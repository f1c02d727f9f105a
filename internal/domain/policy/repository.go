package policy

import "context"

type Repository interface {
	Create(ctx context.Context, p *Policy) error
	GetByPolicyID(ctx context.Context, policyID string) (*Policy, error)
	GetByPolicyIDForUpdate(ctx context.Context, policyID string) (*Policy, error)
	GetByPolicyNumber(ctx context.Context, policyNumber string) (*Policy, error)
	Save(ctx context.Context, p *Policy) error
}
