package accessmock

import (
	"context"

	"policylend/internal/domain/access"
)

// Authorizer grants a fixed role set per identity.
type Authorizer struct {
	Grants map[string][]access.Role
}

var _ access.Authorizer = (*Authorizer)(nil)

func New(grants map[string][]access.Role) *Authorizer {
	return &Authorizer{Grants: grants}
}

// AllowAll returns an authorizer every identity passes.
func AllowAll() *Authorizer { return &Authorizer{} }

func (m *Authorizer) HasRole(_ context.Context, identity string, role access.Role) (bool, error) {
	if m.Grants == nil {
		return true, nil
	}
	for _, r := range m.Grants[identity] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}
