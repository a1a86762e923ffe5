// Package resolving is the facade that ties the public-tree builder, the
// lookahead CFR+ engine and the CFR-D gadget together into a single
// resolve call, mirroring the original resolver's thin Resolving wrapper.
package resolving

import (
	"errors"
	"fmt"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"github.com/behrlich/resolver/pkg/lookahead"
	"github.com/behrlich/resolver/pkg/oracle"
	"github.com/behrlich/resolver/pkg/publictree"
)

var ErrAmbiguousResolveInput = errors.New("resolving: exactly one of opponent range or opponent cfvs is required")

// Resolving owns the collaborators needed to resolve a node: the
// combinatorics, the hand-strength/next-street oracles, and the public
// tree builder. A Resolving value is reusable across many resolve calls
// against the same game; each call builds and discards its own Lookahead.
type Resolving struct {
	Tools        *cardtools.CardTools
	Strength     handstrength.Oracle
	NextStreet   oracle.NextStreetOracle
	Builder      publictree.Builder
	LookaheadCFG lookahead.Params
}

// New constructs a Resolving with the given collaborators and default CFR+
// tuning.
func New(tools *cardtools.CardTools, strength handstrength.Oracle, nso oracle.NextStreetOracle, builder publictree.Builder) *Resolving {
	return &Resolving{
		Tools:        tools,
		Strength:     strength,
		NextStreet:   nso,
		Builder:      builder,
		LookaheadCFG: lookahead.DefaultParams(),
	}
}

// Input bundles the node to resolve and the known/target ranges. Exactly
// one of OpponentRange and OpponentCFVs must be set.
type Input struct {
	Node          *publictree.Node
	PlayerRange   []float64
	OpponentRange []float64
	OpponentCFVs  []float64

	BetSizes        []float64
	AllowAllIn      bool
	Stacks          [2]float64
	GeometricPot    float64
	GeometricSizes  int
}

// Resolve builds a tree rooted at input.Node (limited to the current
// street), constructs a Lookahead over it, runs the appropriate entry
// point, and returns the packaged results.
func (r *Resolving) Resolve(input Input) (lookahead.Results, error) {
	haveRange := input.OpponentRange != nil
	haveCFVs := input.OpponentCFVs != nil
	if haveRange == haveCFVs {
		return lookahead.Results{}, ErrAmbiguousResolveInput
	}

	params := publictree.Params{
		Tools:          r.Tools,
		Board:          input.Node.Board,
		Bets:           input.Node.Bets,
		FirstToAct:     input.Node.CurrentPlayer,
		Stacks:         input.Stacks,
		BetSizes:       input.BetSizes,
		AllowAllIn:     input.AllowAllIn,
		LimitToStreet:  true,
		GeometricPot:   input.GeometricPot,
		GeometricNumSizes: input.GeometricSizes,
	}
	tree, err := r.Builder.Build(params)
	if err != nil {
		return lookahead.Results{}, fmt.Errorf("resolving: building tree: %w", err)
	}

	l, err := lookahead.Build(tree, r.Tools, r.Strength, r.NextStreet, r.LookaheadCFG)
	if err != nil {
		return lookahead.Results{}, fmt.Errorf("resolving: building lookahead: %w", err)
	}

	if haveRange {
		if err := l.ResolveFirstNode(input.PlayerRange, input.OpponentRange); err != nil {
			return lookahead.Results{}, fmt.Errorf("resolving: %w", err)
		}
	} else {
		if err := l.Resolve(input.PlayerRange, input.OpponentCFVs); err != nil {
			return lookahead.Results{}, fmt.Errorf("resolving: %w", err)
		}
	}

	return l.GetResults(), nil
}

// ResolveWithLookahead runs the same resolve as Resolve and also returns
// the Lookahead it built, so the caller can query GetChanceActionCFV on it.
// Resolving itself keeps no reference to any lookahead between calls (§5:
// no shared mutable state across resolves).
func (r *Resolving) ResolveWithLookahead(input Input) (*lookahead.Lookahead, lookahead.Results, error) {
	haveRange := input.OpponentRange != nil
	haveCFVs := input.OpponentCFVs != nil
	if haveRange == haveCFVs {
		return nil, lookahead.Results{}, ErrAmbiguousResolveInput
	}

	params := publictree.Params{
		Tools:          r.Tools,
		Board:          input.Node.Board,
		Bets:           input.Node.Bets,
		FirstToAct:     input.Node.CurrentPlayer,
		Stacks:         input.Stacks,
		BetSizes:       input.BetSizes,
		AllowAllIn:     input.AllowAllIn,
		LimitToStreet:  true,
		GeometricPot:   input.GeometricPot,
		GeometricNumSizes: input.GeometricSizes,
	}
	tree, err := r.Builder.Build(params)
	if err != nil {
		return nil, lookahead.Results{}, fmt.Errorf("resolving: building tree: %w", err)
	}
	l, err := lookahead.Build(tree, r.Tools, r.Strength, r.NextStreet, r.LookaheadCFG)
	if err != nil {
		return nil, lookahead.Results{}, fmt.Errorf("resolving: building lookahead: %w", err)
	}
	if haveRange {
		if err := l.ResolveFirstNode(input.PlayerRange, input.OpponentRange); err != nil {
			return nil, lookahead.Results{}, fmt.Errorf("resolving: %w", err)
		}
	} else {
		if err := l.Resolve(input.PlayerRange, input.OpponentCFVs); err != nil {
			return nil, lookahead.Results{}, fmt.Errorf("resolving: %w", err)
		}
	}
	return l, l.GetResults(), nil
}
