package publictree

import (
	"math"

	"github.com/behrlich/resolver/pkg/notation"
)

// GenerateActions lists the legal actions at a decision node: fold (when
// facing a live bet), check/call, and a bet/raise at each configured pot
// fraction; a size that would exceed the acting player's stack is left out.
// Adapted from the
// teacher's fixed-config action generator, generalized to read bet sizes
// off Params instead of a hardcoded ActionConfig.
func GenerateActions(bets [2]float64, stacks [2]float64, history []notation.Action, params Params) []notation.Action {
	toAct := currentActor(history, params.FirstToAct)
	facing := bets[1-toAct] > bets[toAct]
	remaining := stacks[toAct] - bets[toAct]

	var actions []notation.Action
	if facing {
		actions = append(actions, notation.Action{Type: notation.Fold})
		actions = append(actions, notation.Action{Type: notation.Call})
	} else {
		actions = append(actions, notation.Action{Type: notation.Check})
	}

	if remaining <= 0 {
		return actions
	}

	pot := bets[0] + bets[1]
	if pot <= 0 {
		pot = 1
	}
	callAmount := bets[1-toAct]

	betFractions := params.BetSizes
	if params.GeometricPot > 0 {
		streetsLeft := params.Tools.Settings().StreetsCount - params.Tools.BoardToStreet(params.Board) + 1
		numSizes := params.GeometricNumSizes
		if numSizes <= 0 {
			numSizes = 1
		}
		allIn := stacks[toAct] - bets[toAct]
		g := NewGeometricSizing(params.GeometricPot, streetsLeft, allIn)
		betFractions = g.CalculateBetSizes(pot, numSizes)
	}

	for _, frac := range betFractions {
		size := callAmount + frac*pot
		target := bets[toAct] + sizeAboveCall(size, bets[toAct])
		if target > stacks[toAct] {
			continue
		}
		actionType := notation.Bet
		if facing {
			actionType = notation.Raise
		}
		actions = append(actions, notation.Action{Type: actionType, Amount: round2(target)})
	}

	if params.AllowAllIn {
		allIn := stacks[toAct]
		if allIn > bets[toAct] && !hasAmount(actions, allIn) {
			actionType := notation.Bet
			if facing {
				actionType = notation.Raise
			}
			actions = append(actions, notation.Action{Type: actionType, Amount: allIn})
		}
	}

	return actions
}

func sizeAboveCall(size, currentBet float64) float64 {
	if size < currentBet {
		return 0
	}
	return size - currentBet
}

func hasAmount(actions []notation.Action, amount float64) bool {
	for _, a := range actions {
		if math.Abs(a.Amount-amount) < 1e-9 {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// currentActor derives whose turn it is from the alternation implied by
// history length, since fold/call already close a round before this is
// called and check/check is the only same-player non-alternation case.
func currentActor(history []notation.Action, firstToAct int) int {
	toAct := firstToAct
	for range history {
		toAct = 1 - toAct
	}
	return toAct
}
