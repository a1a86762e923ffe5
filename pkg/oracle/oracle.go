// Package oracle defines the next-street value oracle the lookahead engine
// consumes at depth-limited transitions, plus a reference in-process
// implementation (RolloutOracle) so the engine is runnable without a
// trained neural net.
package oracle

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"github.com/behrlich/resolver/pkg/terminalequity"
)

// ErrShape is returned when an oracle call is given a batch/player/hand axis
// that doesn't match the lookahead's expectations.
var ErrShape = errors.New("oracle: shape mismatch")

// ErrNonFinite is returned when an oracle produces a NaN or infinite CFV.
var ErrNonFinite = errors.New("oracle: non-finite value")

// NextStreetOracle is the external collaborator the lookahead calls at
// depth-limited states: a batched evaluator mapping ranges to counterfactual
// values on a given future board, consumed but never implemented by the
// core. Inputs/outputs are [B,P,HC]: B batch slots (one per pot-size the
// lookahead tracks), P = 2 players, HC = hand count.
type NextStreetOracle interface {
	// GetValue evaluates a batch of transitions on streets after the first.
	GetValue(inputs, outputs [][][]float64, boardIdx int) error
	// GetValueAux is the variant used at street 1 (preflop).
	GetValueAux(inputs, outputs [][][]float64, boardIdx int) error
	// GetValueOnBoard evaluates a single concrete board; values holds
	// per-player ranges on entry and per-player CFVs on exit.
	GetValueOnBoard(board []int, values [2][]float64) error
}

// RolloutOracle answers NextStreetOracle queries by Monte Carlo rollout:
// sampling random completions of the board to the final street and
// averaging the exact showdown equity of each completion. This mirrors the
// teacher's MCCFR terminal rollout (random remaining-card sampling,
// uniform draw, hand evaluation) generalized to arbitrary street depth and
// driven by the handstrength.Oracle abstraction instead of calling the
// evaluator directly.
type RolloutOracle struct {
	tools    *cardtools.CardTools
	strength handstrength.Oracle
	board    []int
	samples  int
	rng      *rand.Rand
}

// NewRolloutOracle constructs a rollout oracle fixed to one depth-limited
// box's board, sampling `samples` completions per query.
func NewRolloutOracle(tools *cardtools.CardTools, strength handstrength.Oracle, board []int, samples int, seed uint64) *RolloutOracle {
	return &RolloutOracle{
		tools:    tools,
		strength: strength,
		board:    append([]int{}, board...),
		samples:  samples,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (o *RolloutOracle) GetValue(inputs, outputs [][][]float64, boardIdx int) error {
	return o.rollout(inputs, outputs)
}

func (o *RolloutOracle) GetValueAux(inputs, outputs [][][]float64, boardIdx int) error {
	return o.rollout(inputs, outputs)
}

func (o *RolloutOracle) GetValueOnBoard(board []int, values [2][]float64) error {
	te := terminalequity.New(o.tools, o.strength)
	if err := te.SetBoard(board); err != nil {
		return err
	}
	hc := o.tools.Settings().HandCount()
	var result [2][]float64
	result[0] = make([]float64, hc)
	result[1] = make([]float64, hc)
	te.TreeNodeCallValue(values, result)
	copy(values[0], result[0])
	copy(values[1], result[1])
	return nil
}

func (o *RolloutOracle) rollout(inputs, outputs [][][]float64) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("%w: batch axis mismatch (%d inputs, %d outputs)", ErrShape, len(inputs), len(outputs))
	}
	settings := o.tools.Settings()
	hc := settings.HandCount()

	for b := range inputs {
		if len(inputs[b]) != settings.PlayersCount || len(outputs[b]) != settings.PlayersCount {
			return fmt.Errorf("%w: player axis mismatch at batch %d", ErrShape, b)
		}
		acc := make([][]float64, settings.PlayersCount)
		for p := range acc {
			acc[p] = make([]float64, hc)
		}
		n := 0
		for s := 0; s < o.samples; s++ {
			fullBoard, ok := o.sampleCompletion()
			if !ok {
				continue
			}
			var values [2][]float64
			values[0] = append([]float64{}, inputs[b][0]...)
			values[1] = append([]float64{}, inputs[b][1]...)
			if err := o.GetValueOnBoard(fullBoard, values); err != nil {
				return err
			}
			for p := 0; p < settings.PlayersCount; p++ {
				for h := 0; h < hc; h++ {
					acc[p][h] += values[p][h]
				}
			}
			n++
		}
		if n == 0 {
			return fmt.Errorf("%w: exhausted attempts sampling a board completion", ErrShape)
		}
		for p := 0; p < settings.PlayersCount; p++ {
			for h := 0; h < hc; h++ {
				v := acc[p][h] / float64(n)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: cfv for player %d hand %d", ErrNonFinite, p, h)
				}
				outputs[b][p][h] = v
			}
		}
	}
	return nil
}

// sampleCompletion draws the remaining board cards uniformly at random
// without replacement, extending o.board to the river.
func (o *RolloutOracle) sampleCompletion() ([]int, bool) {
	settings := o.tools.Settings()
	target := settings.BoardCardCount[settings.StreetsCount-1]
	need := target - len(o.board)
	if need <= 0 {
		return append([]int{}, o.board...), true
	}
	used := make(map[int]bool, len(o.board)+need)
	for _, c := range o.board {
		used[c] = true
	}
	result := append([]int{}, o.board...)
	for i := 0; i < need; i++ {
		found := false
		for attempts := 0; attempts < settings.CardCount*8; attempts++ {
			c := o.rng.IntN(settings.CardCount)
			if !used[c] {
				used[c] = true
				result = append(result, c)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return result, true
}
