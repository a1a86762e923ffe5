package poker_test

import (
	"testing"

	"github.com/behrlich/resolver/internal/config"
	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"github.com/behrlich/resolver/pkg/notation"
	"github.com/behrlich/resolver/pkg/oracle"
	"github.com/behrlich/resolver/pkg/publictree"
	"github.com/behrlich/resolver/pkg/resolving"
)

// TestIntegration_GeometricSizing checks that a geometric bet schedule
// produces a resolvable tree with a non-degenerate action set end to end.
func TestIntegration_GeometricSizing(t *testing.T) {
	posStr := "BTN:AdAc:S100/BB:QdQh:S100|P10|Kh9s4c7d2s|>BTN"
	gs, err := notation.ParsePosition(posStr)
	if err != nil {
		t.Fatalf("failed to parse position: %v", err)
	}

	params := config.DefaultTexas()
	params.CFR.Iters = 120
	params.CFR.SkipIters = 40

	tools := cardtools.New(params.Game.ToCardToolsSettings())
	strength := handstrength.NewTexasAdapter()
	board := cardIndices(gs.Board)
	nso := oracle.NewRolloutOracle(tools, strength, board, params.Rollout.Samples, params.Rollout.Seed)

	r := resolving.New(tools, strength, nso, publictree.NewTreeBuilder())
	r.LookaheadCFG = params.CFR.ToLookaheadParams()

	toAct := gs.ToAct
	opp := 1 - toAct
	playerRange := singleComboRange(t, tools, board, gs.Players[toAct].Range[0])
	opponentRange := singleComboRange(t, tools, board, gs.Players[opp].Range[0])

	committed := gs.Pot / 2
	node := &publictree.Node{
		Street:        int(gs.Street),
		Board:         board,
		CurrentPlayer: toAct,
		Bets:          [2]float64{committed, committed},
	}

	results, err := r.Resolve(resolving.Input{
		Node:           node,
		PlayerRange:    playerRange,
		OpponentRange:  opponentRange,
		Stacks:         [2]float64{gs.Players[0].Stack, gs.Players[1].Stack},
		GeometricPot:   30.0,
		GeometricSizes: 1,
	})
	if err != nil {
		t.Fatalf("resolve with geometric sizing failed: %v", err)
	}
	if len(results.Strategy) < 2 {
		t.Fatalf("expected at least fold/call plus one bet action, got %d actions", len(results.Strategy))
	}
}
