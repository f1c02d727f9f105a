package cache

import (
	"context"
	"encoding/json"
	"time"

	loanuc "policylend/internal/usecase/loan"

	"github.com/redis/go-redis/v9"
)

// LoanSnapshotStore mirrors committed loan state into redis for the UI read
// path. It is a secondary index only: the core never reads it back for
// correctness, and callers treat write errors as log-and-continue.
type LoanSnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLoanSnapshotStore(rdb *redis.Client, ttl time.Duration) *LoanSnapshotStore {
	return &LoanSnapshotStore{rdb: rdb, ttl: ttl}
}

func snapshotKey(loanID string) string { return "loan:snapshot:" + loanID }

func (s *LoanSnapshotStore) StoreLoan(ctx context.Context, l *loanuc.LoanDTO) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.rdb.Set(ctx, snapshotKey(l.LoanID), payload, s.ttl).Err()
}

// GetLoan returns the cached snapshot, or redis.Nil when absent.
func (s *LoanSnapshotStore) GetLoan(ctx context.Context, loanID string) (*loanuc.LoanDTO, error) {
	v, err := s.rdb.Get(ctx, snapshotKey(loanID)).Bytes()
	if err != nil {
		return nil, err
	}
	var out loanuc.LoanDTO
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
