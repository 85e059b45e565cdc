// Package roles resolves what a Telegram user is allowed to do.
package roles

import (
	"context"
	"fmt"

	"github.com/m3rciful/trustbot/internal/store"
)

// Role is a privilege tier. Higher values include lower ones.
type Role int

const (
	Anonymous Role = iota
	Operator
	SuperOperator
)

func (r Role) String() string {
	switch r {
	case Operator:
		return "operator"
	case SuperOperator:
		return "super_operator"
	}
	return "anonymous"
}

// AtLeast reports whether r includes min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// OperatorSource is the part of the store the gate reads.
type OperatorSource interface {
	TouchOperator(ctx context.Context, who store.Identity) (store.Operator, bool, error)
}

// Gate resolves roles against the store on every call, so grants and
// revocations apply to the very next update.
type Gate struct {
	src OperatorSource
}

// NewGate creates a Gate over src.
func NewGate(src OperatorSource) *Gate {
	return &Gate{src: src}
}

// Resolve returns who's role, refreshing the operator's display name.
func (g *Gate) Resolve(ctx context.Context, who store.Identity) (Role, error) {
	op, found, err := g.src.TouchOperator(ctx, who)
	if err != nil {
		return Anonymous, fmt.Errorf("resolve role: %w", err)
	}
	switch {
	case !found:
		return Anonymous, nil
	case op.Super:
		return SuperOperator, nil
	}
	return Operator, nil
}
