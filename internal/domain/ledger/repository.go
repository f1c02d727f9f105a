package ledger

import "context"

type Repository interface {
	CreateToken(ctx context.Context, t *Token) error
	GetToken(ctx context.Context, symbol string) (*Token, error)

	// Balance rows are absent until first credited; implementations return
	// their driver's not-found error for missing rows.
	GetBalance(ctx context.Context, account, token string) (*Balance, error)
	GetBalanceForUpdate(ctx context.Context, account, token string) (*Balance, error)
	CreateBalance(ctx context.Context, b *Balance) error
	SaveBalance(ctx context.Context, b *Balance) error

	GetAllowance(ctx context.Context, owner, spender, token string) (*Allowance, error)
	GetAllowanceForUpdate(ctx context.Context, owner, spender, token string) (*Allowance, error)
	CreateAllowance(ctx context.Context, a *Allowance) error
	SaveAllowance(ctx context.Context, a *Allowance) error
}
