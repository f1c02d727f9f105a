package policymock

import (
	"context"
	"errors"

	domain "policylend/internal/domain/policy"
)

var errUnimplemented = errors.New("policymock: method not implemented")

type Repo struct {
	CreateFn                 func(ctx context.Context, p *domain.Policy) error
	GetByPolicyIDFn          func(ctx context.Context, policyID string) (*domain.Policy, error)
	GetByPolicyIDForUpdateFn func(ctx context.Context, policyID string) (*domain.Policy, error)
	GetByPolicyNumberFn      func(ctx context.Context, policyNumber string) (*domain.Policy, error)
	SaveFn                   func(ctx context.Context, p *domain.Policy) error
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, p *domain.Policy) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByPolicyID(ctx context.Context, policyID string) (*domain.Policy, error) {
	if m.GetByPolicyIDFn != nil {
		return m.GetByPolicyIDFn(ctx, policyID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByPolicyIDForUpdate(ctx context.Context, policyID string) (*domain.Policy, error) {
	if m.GetByPolicyIDForUpdateFn != nil {
		return m.GetByPolicyIDForUpdateFn(ctx, policyID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByPolicyNumber(ctx context.Context, policyNumber string) (*domain.Policy, error) {
	if m.GetByPolicyNumberFn != nil {
		return m.GetByPolicyNumberFn(ctx, policyNumber)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, p *domain.Policy) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
