package access

import (
	"context"
	"errors"
	"time"
)

var ErrUnauthorized = errors.New("caller lacks the required role")

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOracle     Role = "oracle"
	RoleLiquidator Role = "liquidator"
)

// Grant assigns a role to an already-verified caller identity. Signature
// verification happens upstream; the core only ever sees identity strings.
type Grant struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	Identity  string    `gorm:"size:32;uniqueIndex:ux_grants_identity_role" json:"identity"`
	Role      Role      `gorm:"size:16;uniqueIndex:ux_grants_identity_role" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Grant) TableName() string { return "role_grants" }

// Authorizer is the capability check injected into mutating operations.
type Authorizer interface {
	HasRole(ctx context.Context, identity string, role Role) (bool, error)
}

type Repository interface {
	Authorizer
	Grant(ctx context.Context, identity string, role Role) error
	Revoke(ctx context.Context, identity string, role Role) error
}

// Require returns ErrUnauthorized unless identity holds role.
func Require(ctx context.Context, a Authorizer, identity string, role Role) error {
	ok, err := a.HasRole(ctx, identity, role)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}
