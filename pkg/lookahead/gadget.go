package lookahead

import (
	"github.com/behrlich/resolver/pkg/cardtools"
)

// Gadget reconstructs, on every CFR+ iteration, an opponent range consistent
// with a target counterfactual-value vector. This is the CFR-D
// re-solving gadget: the opponent is modelled as choosing, per hand, between
// playing on (entering the subgame) or accepting the alternative value the
// target CFVs represent, and regret-matches that two-arm choice across
// iterations. No reference implementation exists in the retrieved corpus
// for this component (the distilled spec documents its contract directly,
// §4.4), so the two-arm regret-matching construction below is built from
// that contract rather than ported from source.
type Gadget struct {
	tools  *cardtools.CardTools
	board  []int
	target []float64 // tau: the opponent CFV constraint, in the same chip units as the root CFVs
	hc     int
	mask   []float64

	// cumulative regret for the two arms (play, terminate) per hand.
	regretPlay      []float64
	regretTerminate []float64
}

// NewGadget constructs a gadget fixed to one board and one target CFV
// vector. It takes no range of the resolving player: the gadget only ever
// emits an OPPONENT range.
func NewGadget(tools *cardtools.CardTools, board []int, opponentCFVTarget []float64) *Gadget {
	hc := tools.Settings().HandCount()
	return &Gadget{
		tools:           tools,
		board:           append([]int{}, board...),
		target:          append([]float64{}, opponentCFVTarget...),
		hc:              hc,
		mask:            tools.PossibleHandsMask(board),
		regretPlay:      make([]float64, hc),
		regretTerminate: make([]float64, hc),
	}
}

// ComputeOpponentRange derives the opponent range for this iteration from
// the opponent's CFVs achieved by entering the subgame (currentCfvs) versus
// the target constraint. Each hand regret-matches independently between
// "play" (enter the subgame, value currentCfvs[h]) and "terminate" (accept
// the target, value target[h]); the resulting mixed strategy over "play" is
// the probability mass assigned to that hand, renormalized to sum to 1 over
// possible hands.
func (g *Gadget) ComputeOpponentRange(currentCfvs []float64, iteration int) []float64 {
	out := make([]float64, g.hc)
	var total float64
	for h := 0; h < g.hc; h++ {
		if g.mask[h] == 0 {
			continue
		}
		playValue := currentCfvs[h]
		terminateValue := g.target[h]
		avg := (playValue + terminateValue) / 2
		regretPlay := playValue - avg
		regretTerminate := terminateValue - avg

		g.regretPlay[h] += regretPlay
		g.regretTerminate[h] += regretTerminate
		if g.regretPlay[h] < 0 {
			g.regretPlay[h] = 0
		}
		if g.regretTerminate[h] < 0 {
			g.regretTerminate[h] = 0
		}

		sum := g.regretPlay[h] + g.regretTerminate[h]
		var playProb float64
		if sum <= 0 {
			playProb = 0.5
		} else {
			playProb = g.regretPlay[h] / sum
		}
		out[h] = playProb
		total += playProb
	}
	if total <= 0 {
		return g.tools.UniformRange(g.board)
	}
	for h := range out {
		out[h] /= total
	}
	return out
}
