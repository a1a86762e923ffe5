// Package lookahead is the CFR+ re-solving core: given a public subtree, it
// runs counterfactual regret minimization over it and reports the root
// player's average strategy plus both players' counterfactual values.
//
// The tree is flattened into one instance record per node per depth rather
// than into the dense [A,B,N,S,P,H] tensor the original engine uses
// internally — an explicitly sanctioned alternative for statically typed
// re-implementations, since the broadcast/transpose indexing arithmetic of
// the tensor layout doesn't translate cleanly and a tree-of-records
// implementation reaches the same asymptotic throughput for the batch
// sizes this engine runs at. The public Results type still reports the
// documented [A,S,HC]/[PC,HC] shapes.
package lookahead

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"github.com/behrlich/resolver/pkg/notation"
	"github.com/behrlich/resolver/pkg/oracle"
	"github.com/behrlich/resolver/pkg/publictree"
	"github.com/behrlich/resolver/pkg/terminalequity"
)

var (
	ErrInvalidInput      = errors.New("lookahead: invalid input")
	ErrInvariantViolation = errors.New("lookahead: invariant violation")
	ErrOracleFailure      = errors.New("lookahead: oracle failure")
)

// Params are the CFR+ tuning constants, named directly after the spec's
// enumerated Parameters (§6).
type Params struct {
	CFRIters      int
	CFRSkipIters  int
	RegretEpsilon float64
	MaxNumber     float64
}

// DefaultParams mirrors the example magnitudes given in the external
// interfaces section.
func DefaultParams() Params {
	return Params{CFRIters: 1000, CFRSkipIters: 500, RegretEpsilon: 1e-9, MaxNumber: 1e15}
}

// instance is one node of the flattened public tree, carrying both
// players' per-hand ranges/CFVs and, for decision nodes, the regret and
// strategy state CFR+ mutates every iteration.
type instance struct {
	node   *publictree.Node
	depth  int
	parent int // index into depths[depth-1], -1 for root
	parentAction int

	ranges  [2][]float64
	cfvs    [2][]float64
	avgCfvs [2][]float64

	actions         []notation.Action
	regrets         [][]float64 // [A][H]
	currentStrategy [][]float64
	avgStrategy     [][]float64
	children        []int // index into depths[depth+1], parallel to actions
}

func (in *instance) actingPlayer() int { return in.node.CurrentPlayer }

// Lookahead owns one resolve's prebuilt layout and mutable CFR+ state.
type Lookahead struct {
	tools    *cardtools.CardTools
	strength handstrength.Oracle
	oracle   oracle.NextStreetOracle
	te       *terminalequity.TerminalEquity
	params   Params
	hc       int

	root   int // always 0
	depths [][]instance

	rootPlayer  int // which local player index is "us" (swap convention anchor)
	swapOracle  bool
	gadget      *Gadget
	fromCFVs    bool
	iterations  int
}

// Build walks tree once, allocating an instance per node and wiring
// parent/child links, matching §4.3's single-pass layout construction.
func Build(tree *publictree.Node, tools *cardtools.CardTools, strength handstrength.Oracle, nso oracle.NextStreetOracle, params Params) (*Lookahead, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidInput)
	}
	l := &Lookahead{
		tools:    tools,
		strength: strength,
		oracle:   nso,
		te:       terminalequity.New(tools, strength),
		params:   params,
		hc:       tools.Settings().HandCount(),
	}
	if err := l.te.SetBoard(tree.Board); err != nil {
		return nil, fmt.Errorf("lookahead: %w", err)
	}
	l.rootPlayer = tree.CurrentPlayer
	l.swapOracle = l.rootPlayer == 1

	l.depths = append(l.depths, nil)
	l.addInstance(tree, 0, -1, -1)

	for d := 0; d < len(l.depths); d++ {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			if in.node.Kind != publictree.Decision && in.node.Kind != publictree.Chance {
				continue
			}
			if len(in.node.Children) == 0 {
				continue // depth-limited chance box: no children to expand
			}
			for a, child := range in.node.Children {
				idx := l.addInstance(child, d+1, i, a)
				in.children = append(in.children, idx)
			}
			if in.node.Kind == publictree.Decision {
				in.actions = in.node.Actions
				in.regrets = make([][]float64, len(in.actions))
				in.currentStrategy = make([][]float64, len(in.actions))
				in.avgStrategy = make([][]float64, len(in.actions))
				for a := range in.actions {
					in.regrets[a] = make([]float64, l.hc)
					in.currentStrategy[a] = make([]float64, l.hc)
					in.avgStrategy[a] = make([]float64, l.hc)
					for h := range in.regrets[a] {
						in.regrets[a][h] = params.RegretEpsilon
					}
				}
			}
		}
	}
	return l, nil
}

func (l *Lookahead) addInstance(node *publictree.Node, depth, parent, parentAction int) int {
	for len(l.depths) <= depth {
		l.depths = append(l.depths, nil)
	}
	in := instance{node: node, depth: depth, parent: parent, parentAction: parentAction}
	in.ranges[0] = make([]float64, l.hc)
	in.ranges[1] = make([]float64, l.hc)
	in.cfvs[0] = make([]float64, l.hc)
	in.cfvs[1] = make([]float64, l.hc)
	in.avgCfvs[0] = make([]float64, l.hc)
	in.avgCfvs[1] = make([]float64, l.hc)
	l.depths[depth] = append(l.depths[depth], in)
	idx := len(l.depths[depth]) - 1
	return idx
}

func (l *Lookahead) root0() *instance { return &l.depths[0][0] }

// ResolveFirstNode seeds both players' ranges at the root and runs CFR+.
func (l *Lookahead) ResolveFirstNode(pRange, oRange []float64) error {
	if len(pRange) != l.hc || len(oRange) != l.hc {
		return fmt.Errorf("%w: range length mismatch", ErrInvalidInput)
	}
	l.fromCFVs = false
	root := l.root0()
	copy(root.ranges[l.rootPlayer], pRange)
	copy(root.ranges[1-l.rootPlayer], oRange)
	return l.compute()
}

// Resolve seeds the resolving player's range and stores opponentCFVs as the
// gadget's target, reconstructing the opponent's range every iteration.
func (l *Lookahead) Resolve(pRange, opponentCFVs []float64) error {
	if len(pRange) != l.hc || len(opponentCFVs) != l.hc {
		return fmt.Errorf("%w: range length mismatch", ErrInvalidInput)
	}
	l.fromCFVs = true
	root := l.root0()
	copy(root.ranges[l.rootPlayer], pRange)
	l.gadget = NewGadget(l.tools, root.node.Board, opponentCFVs)
	return l.compute()
}

// compute runs exactly CFRIters iterations of the fixed eight-step loop
// described in §4.5, in the documented pass order.
func (l *Lookahead) compute() error {
	opponent := 1 - l.rootPlayer
	for t := 0; t < l.params.CFRIters; t++ {
		if l.fromCFVs {
			root := l.root0()
			copy(root.ranges[opponent], l.gadget.ComputeOpponentRange(root.cfvs[opponent], t))
		}

		l.computeCurrentStrategies()
		l.computeRanges()

		if t >= l.params.CFRSkipIters {
			l.accumulateAverageStrategy()
		}

		if err := l.computeTerminalEquities(); err != nil {
			return err
		}
		l.computeBackwardCFVs()
		l.computeRegrets()

		if t >= l.params.CFRSkipIters {
			l.accumulateAverageCFVs()
		}
		l.iterations++
	}
	l.normalizeAverages()
	return nil
}

// computeCurrentStrategies clips regrets to [epsilon, max] (CFR+) and
// regret-matches into a per-hand probability distribution over actions. The
// clamp is computed into a scratch buffer and never written back to
// in.regrets: the persisted regret history is only ever updated by
// computeRegrets, which clips to 0 (not RegretEpsilon) on its own schedule.
func (l *Lookahead) computeCurrentStrategies() {
	for d := range l.depths {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			if in.regrets == nil {
				continue
			}
			clamped := make([]float64, len(in.regrets))
			for h := 0; h < l.hc; h++ {
				var sum float64
				for a := range in.regrets {
					r := in.regrets[a][h]
					if r < l.params.RegretEpsilon {
						r = l.params.RegretEpsilon
					}
					if r > l.params.MaxNumber {
						r = l.params.MaxNumber
					}
					clamped[a] = r
					sum += r
				}
				for a := range in.currentStrategy {
					in.currentStrategy[a][h] = clamped[a] / sum
				}
			}
		}
	}
}

// computeRanges pushes reach probabilities forward: the acting player's
// reach at a child is the parent's reach times that action's current
// strategy; the other player's reach carries through unchanged (I3).
func (l *Lookahead) computeRanges() {
	for d := range l.depths {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			if len(in.children) == 0 {
				continue
			}
			actor := in.actingPlayer()
			opp := 1 - actor
			for a, childIdx := range in.children {
				child := &l.depths[d+1][childIdx]
				for h := 0; h < l.hc; h++ {
					strat := 1.0
					if in.currentStrategy != nil {
						strat = in.currentStrategy[a][h]
					}
					child.ranges[actor][h] = in.ranges[actor][h] * strat
					child.ranges[opp][h] = in.ranges[opp][h]
				}
			}
		}
	}
}

func (l *Lookahead) accumulateAverageStrategy() {
	root := l.root0()
	if root.avgStrategy == nil {
		return
	}
	for a := range root.currentStrategy {
		for h := 0; h < l.hc; h++ {
			root.avgStrategy[a][h] += root.currentStrategy[a][h]
		}
	}
}

func (l *Lookahead) accumulateAverageCFVs() {
	for _, d := range rootAndChildDepths(len(l.depths)) {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			for p := 0; p < 2; p++ {
				for h := 0; h < l.hc; h++ {
					in.avgCfvs[p][h] += in.cfvs[p][h]
				}
			}
		}
	}
}

// rootAndChildDepths returns the distinct depth indices {0,1} (root and its
// children's layer, matching the spec's 1-indexed cfvs[1]/cfvs[2]),
// clamped and deduplicated for trees shallower than two layers.
func rootAndChildDepths(numDepths int) []int {
	if numDepths <= 1 {
		return []int{0}
	}
	return []int{0, 1}
}

// computeTerminalEquities evaluates every terminal instance's CFVs from its
// own ranges alone, so showdown/fold instances within a depth are
// independent and safe to fan out across goroutines — the same batch-axis
// parallelism the original engine gets for free from its dense tensor
// layout. Depth-limited chance boxes are evaluated serially afterward: the
// oracle is an external collaborator whose concurrency-safety the interface
// doesn't guarantee.
func (l *Lookahead) computeTerminalEquities() error {
	for d := range l.depths {
		g, _ := errgroup.WithContext(context.Background())
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			switch in.node.Kind {
			case publictree.TerminalShowdown:
				g.Go(func() error {
					l.te.TreeNodeCallValue(in.ranges, in.cfvs)
					l.scalePot(in)
					return nil
				})
			case publictree.TerminalFold:
				g.Go(func() error {
					l.te.TreeNodeFoldValue(in.ranges, in.cfvs, in.node.CurrentPlayer)
					l.scalePot(in)
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			if in.node.Kind == publictree.Chance && len(in.node.Children) == 0 {
				if err := l.evalDepthLimitedBox(in); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (l *Lookahead) scalePot(in *instance) {
	pot := in.node.Bets[0] + in.node.Bets[1]
	for p := 0; p < 2; p++ {
		for h := range in.cfvs[p] {
			in.cfvs[p][h] *= pot
		}
	}
}

// evalDepthLimitedBox hands a depth-limited transition to the next-street
// oracle, applying the P1-centric swap convention documented in §4.5 step5.
func (l *Lookahead) evalDepthLimitedBox(in *instance) error {
	a, b := in.ranges[0], in.ranges[1]
	if l.swapOracle {
		a, b = b, a
	}
	inputs := [][][]float64{{append([]float64{}, a...), append([]float64{}, b...)}}
	outputs := [][][]float64{{make([]float64, l.hc), make([]float64, l.hc)}}

	street := l.tools.BoardToStreet(in.node.Board)
	var err error
	if street == 1 {
		err = l.oracle.GetValueAux(inputs, outputs, 0)
	} else {
		err = l.oracle.GetValue(inputs, outputs, 0)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOracleFailure, err)
	}
	out0, out1 := outputs[0][0], outputs[0][1]
	if l.swapOracle {
		out0, out1 = out1, out0
	}
	for h := 0; h < l.hc; h++ {
		if math.IsNaN(out0[h]) || math.IsNaN(out1[h]) || math.IsInf(out0[h], 0) || math.IsInf(out1[h], 0) {
			return fmt.Errorf("%w: non-finite oracle output", ErrOracleFailure)
		}
	}
	in.cfvs[0] = out0
	in.cfvs[1] = out1
	l.scalePot(in)
	return nil
}

// computeBackwardCFVs sums each decision/chance node's value as the
// strategy-weighted value of its children, deepest depth first.
func (l *Lookahead) computeBackwardCFVs() {
	for d := len(l.depths) - 1; d >= 0; d-- {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			if len(in.children) == 0 {
				continue // terminal or depth-limited: cfvs already set
			}
			actor := in.actingPlayer()
			opp := 1 - actor

			for h := 0; h < l.hc; h++ {
				var actingSum, oppSum float64
				for a, childIdx := range in.children {
					child := &l.depths[d+1][childIdx]
					strat := 1.0
					if in.currentStrategy != nil {
						strat = in.currentStrategy[a][h]
					}
					actingSum += strat * child.cfvs[actor][h]
					oppSum += child.cfvs[opp][h]
				}
				in.cfvs[actor][h] = actingSum
				in.cfvs[opp][h] = oppSum
			}
		}
	}
}

// computeRegrets applies the CFR+ update: each action's regret accumulates
// the gap between its child value and the node's realized value on the
// acting player's axis, then clips to non-negative.
func (l *Lookahead) computeRegrets() {
	for d := range l.depths {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			if in.regrets == nil {
				continue
			}
			actor := in.actingPlayer()
			for a, childIdx := range in.children {
				child := &l.depths[d+1][childIdx]
				for h := 0; h < l.hc; h++ {
					delta := child.cfvs[actor][h] - in.cfvs[actor][h]
					r := in.regrets[a][h] + delta
					if r < 0 {
						r = 0
					}
					if r > l.params.MaxNumber {
						r = l.params.MaxNumber
					}
					in.regrets[a][h] = r
				}
			}
		}
	}
}

// normalizeAverages divides accumulated sums by the number of post-burn-in
// iterations, falling back to all mass on the root's first action (fold
// when facing a bet, otherwise check) for zero-reach hands.
func (l *Lookahead) normalizeAverages() {
	denom := float64(l.params.CFRIters - l.params.CFRSkipIters)
	if denom <= 0 {
		denom = 1
	}
	root := l.root0()
	for h := 0; h < l.hc; h++ {
		var sum float64
		for a := range root.avgStrategy {
			sum += root.avgStrategy[a][h]
		}
		if sum <= 0 || math.IsNaN(sum) {
			for a := range root.avgStrategy {
				root.avgStrategy[a][h] = 0
			}
			if len(root.avgStrategy) > 0 {
				root.avgStrategy[0][h] = 1
			}
			continue
		}
		for a := range root.avgStrategy {
			root.avgStrategy[a][h] /= sum
		}
	}

	for _, d := range rootAndChildDepths(len(l.depths)) {
		for i := range l.depths[d] {
			in := &l.depths[d][i]
			for p := 0; p < 2; p++ {
				for h := range in.avgCfvs[p] {
					in.avgCfvs[p][h] /= denom
				}
			}
		}
	}
}

// GetChanceActionCFV looks up the next-street oracle's value for the given
// root action on a concrete future board, scaled by that action's pot
// size, from the opponent's perspective.
func (l *Lookahead) GetChanceActionCFV(actionIdx int, board []int) ([]float64, error) {
	root := l.root0()
	if actionIdx < 0 || actionIdx >= len(root.children) {
		return nil, fmt.Errorf("%w: action index out of range", ErrInvalidInput)
	}
	child := &l.depths[1][root.children[actionIdx]]
	var values [2][]float64
	values[0] = append([]float64{}, child.ranges[0]...)
	values[1] = append([]float64{}, child.ranges[1]...)
	if err := l.oracle.GetValueOnBoard(board, values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleFailure, err)
	}
	pot := child.node.Bets[0] + child.node.Bets[1]
	out := values[1-l.rootPlayer]
	for h := range out {
		out[h] *= pot
	}
	return out, nil
}
