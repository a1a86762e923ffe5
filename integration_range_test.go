package poker_test

import (
	"math"
	"testing"

	"github.com/behrlich/resolver/internal/config"
	"github.com/behrlich/resolver/pkg/cards"
	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"github.com/behrlich/resolver/pkg/notation"
	"github.com/behrlich/resolver/pkg/oracle"
	"github.com/behrlich/resolver/pkg/publictree"
	"github.com/behrlich/resolver/pkg/resolving"
)

// rangeVectorFor builds a uniform range vector over combos, masked by board
// blocking and renormalized — the range-vs-range counterpart to
// singleComboRange.
func rangeVectorFor(t *testing.T, tools *cardtools.CardTools, board []int, combos []notation.Combo) []float64 {
	t.Helper()
	hc := tools.Settings().HandCount()
	out := make([]float64, hc)
	for _, combo := range combos {
		hole := comboHole(combo)
		if !tools.HandIsPossible(hole) {
			continue
		}
		out[tools.HoleIndex(hole)] += 1
	}
	mask := tools.PossibleHandsMask(board)
	var total float64
	for i := range out {
		out[i] *= mask[i]
		total += out[i]
	}
	if total == 0 {
		t.Fatal("range has no unblocked combos on this board")
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// TestIntegration_RangeVsRange validates that range-vs-range solving
// produces a normalized root strategy for every hand in the acting
// player's range, not just a single combo.
func TestIntegration_RangeVsRange(t *testing.T) {
	boardCards, err := cards.ParseCards("Kh9s4c7d2s")
	if err != nil {
		t.Fatalf("failed to parse board: %v", err)
	}
	board := cardIndices(boardCards)

	btnRange, err := notation.ParseRange("AA")
	if err != nil {
		t.Fatalf("failed to parse BTN range: %v", err)
	}
	bbRange, err := notation.ParseRange("QQ")
	if err != nil {
		t.Fatalf("failed to parse BB range: %v", err)
	}

	params := config.DefaultTexas()
	params.CFR.Iters = 120
	params.CFR.SkipIters = 40

	tools := cardtools.New(params.Game.ToCardToolsSettings())
	strength := handstrength.NewTexasAdapter()
	nso := oracle.NewRolloutOracle(tools, strength, board, params.Rollout.Samples, params.Rollout.Seed)
	r := resolving.New(tools, strength, nso, publictree.NewTreeBuilder())
	r.LookaheadCFG = params.CFR.ToLookaheadParams()

	playerRange := rangeVectorFor(t, tools, board, btnRange)
	opponentRange := rangeVectorFor(t, tools, board, bbRange)

	node := &publictree.Node{
		Street:        3, // river
		Board:         board,
		CurrentPlayer: 0,
		Bets:          [2]float64{5, 5},
	}

	results, err := r.Resolve(resolving.Input{
		Node:          node,
		PlayerRange:   playerRange,
		OpponentRange: opponentRange,
		BetSizes:      []float64{1.0},
		Stacks:        [2]float64{100, 100},
	})
	if err != nil {
		t.Fatalf("range-vs-range resolve failed: %v", err)
	}

	for h, weight := range playerRange {
		if weight == 0 {
			continue
		}
		var sum float64
		for a := range results.Strategy {
			sum += results.Strategy[a][h]
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("strategy for in-range hand %d doesn't sum to 1.0, got %.6f", h, sum)
		}
	}
}
