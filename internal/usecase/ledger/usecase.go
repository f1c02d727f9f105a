package ledger

import (
	"context"
	"errors"

	"policylend/internal/domain/access"
	"policylend/internal/domain/ledger"
	"policylend/internal/domain/uow"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the stablecoin bookkeeping surface: a token registry plus
// balances and allowances with ERC20-like semantics. Every move is atomic —
// it happens inside one transaction or not at all.
type Service struct {
	uow    uow.UnitOfWork
	tokens ledger.Repository
	auth   access.Authorizer
	log    *zap.Logger
}

func NewService(u uow.UnitOfWork, tokens ledger.Repository, auth access.Authorizer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{uow: u, tokens: tokens, auth: auth, log: log}
}

func (s *Service) AddToken(ctx context.Context, caller string, t ledger.Token) (*ledger.Token, error) {
	if err := access.Require(ctx, s.auth, caller, access.RoleAdmin); err != nil {
		return nil, err
	}
	if t.Symbol == "" || t.Decimals <= 0 || t.MinLoanAmount < 0 || t.MinLoanAmount > t.MaxLoanAmount {
		return nil, ledger.ErrInvalidAmount
	}
	if _, err := s.tokens.GetToken(ctx, t.Symbol); err == nil {
		return nil, ledger.ErrTokenExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.tokens.CreateToken(ctx, &t); err != nil {
		return nil, err
	}
	s.log.Info("token registered", zap.String("symbol", t.Symbol), zap.Int("decimals", t.Decimals))
	return &t, nil
}

func (s *Service) GetToken(ctx context.Context, symbol string) (*ledger.Token, error) {
	t, err := s.tokens.GetToken(ctx, symbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrUnknownToken
		}
		return nil, err
	}
	return t, nil
}

// Mint credits new units to an account. Test/admin surface only.
func (s *Service) Mint(ctx context.Context, caller, account, token string, amount int64) error {
	if err := access.Require(ctx, s.auth, caller, access.RoleAdmin); err != nil {
		return err
	}
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := mustToken(ctx, r.Ledger, token); err != nil {
			return err
		}
		return Credit(ctx, r.Ledger, account, token, amount)
	})
}

func (s *Service) BalanceOf(ctx context.Context, account, token string) (int64, error) {
	b, err := s.tokens.GetBalance(ctx, account, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return b.Amount, nil
}

func (s *Service) Allowance(ctx context.Context, owner, spender, token string) (int64, error) {
	a, err := s.tokens.GetAllowance(ctx, owner, spender, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return a.Amount, nil
}

// Transfer moves amount from the caller to another account.
func (s *Service) Transfer(ctx context.Context, caller, to, token string, amount int64) error {
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := mustToken(ctx, r.Ledger, token); err != nil {
			return err
		}
		return Move(ctx, r.Ledger, caller, to, token, amount)
	})
}

// Approve sets (not adds to) the allowance owner grants spender.
func (s *Service) Approve(ctx context.Context, owner, spender, token string, amount int64) error {
	if amount < 0 {
		return ledger.ErrInvalidAmount
	}
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := mustToken(ctx, r.Ledger, token); err != nil {
			return err
		}
		a, err := r.Ledger.GetAllowanceForUpdate(ctx, owner, spender, token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.Ledger.CreateAllowance(ctx, &ledger.Allowance{Owner: owner, Spender: spender, Token: token, Amount: amount})
		}
		if err != nil {
			return err
		}
		a.Amount = amount
		return r.Ledger.SaveAllowance(ctx, a)
	})
}

// TransferFrom moves amount from `from` to `to` on the strength of an
// allowance previously granted to the caller.
func (s *Service) TransferFrom(ctx context.Context, caller, from, to, token string, amount int64) error {
	if amount <= 0 {
		return ledger.ErrInvalidAmount
	}
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := mustToken(ctx, r.Ledger, token); err != nil {
			return err
		}
		if err := SpendAllowance(ctx, r.Ledger, from, caller, token, amount); err != nil {
			return err
		}
		return Move(ctx, r.Ledger, from, to, token, amount)
	})
}

func mustToken(ctx context.Context, repo ledger.Repository, symbol string) (*ledger.Token, error) {
	t, err := repo.GetToken(ctx, symbol)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrUnknownToken
		}
		return nil, err
	}
	return t, nil
}
