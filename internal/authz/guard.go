// Package authz decides whether a caller may modify a stored strategy.
package authz

import (
	"fmt"

	"strategystore/internal/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/sirupsen/logrus"
)

// ownerModel grants access exactly when the requesting identity equals the
// record owner. There are no policy rows and no role inheritance.
const ownerModel = `
[request_definition]
r = sub, owner

[policy_definition]
p = sub

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == r.owner
`

// Guard answers "does caller own record?". It keeps no per-request state and
// is safe to share.
type Guard struct {
	enforcer *casbin.Enforcer
}

// NewOwnerGuard builds a Guard backed by the owner-only casbin model.
func NewOwnerGuard() (*Guard, error) {
	m, err := model.NewModelFromString(ownerModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load owner model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to create enforcer: %w", err)
	}
	return &Guard{enforcer: enforcer}, nil
}

// MustNewOwnerGuard is NewOwnerGuard for the static model; it panics only if
// the embedded model text is broken.
func MustNewOwnerGuard() *Guard {
	g, err := NewOwnerGuard()
	if err != nil {
		panic(err)
	}
	return g
}

// Authorize reports whether caller is the creator of existing. Enforcer
// errors deny.
func (g *Guard) Authorize(existing models.StrategyRecord, caller string) bool {
	ok, err := g.enforcer.Enforce(caller, existing.Creator)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"strategy_id": existing.ID,
			"caller":      caller,
		}).Errorf("authz: enforce failed: %v", err)
		return false
	}
	return ok
}
