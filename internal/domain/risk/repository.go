package risk

import "context"

type Repository interface {
	// Create appends a new version for the parameters' collateral class.
	Create(ctx context.Context, p *Parameters) error
	// GetLatestByClass returns the highest version for the class.
	GetLatestByClass(ctx context.Context, collateralClass string) (*Parameters, error)
}
