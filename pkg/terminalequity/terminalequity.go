// Package terminalequity evaluates player equities at terminal nodes of the
// public tree: for a fixed board it precomputes a call-matrix (showdown
// equity) and a fold-matrix (uncontested payout) over all private-hand
// pairs, blocking out hands that share a card with the board or with each
// other.
package terminalequity

import (
	"fmt"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
)

// PreflopEquityLoader supplies the persisted preflop equity table so the
// engine doesn't have to enumerate every possible river board on every
// preflop resolve. Swappable so tests can use a cheap computed stand-in and
// production can load an artifact from disk.
type PreflopEquityLoader interface {
	Load(tools *cardtools.CardTools, strength handstrength.Oracle) ([][]float64, error)
}

// ComputedPreflopLoader computes the preflop equity table the same way any
// other inner-round table is computed (full enumeration of river boards).
// Only practical for small hand counts (Leduc-scale games, or tests). This
// package provides no file-backed loader; SetPreflopLoader accepts any
// PreflopEquityLoader that reads a persisted artifact.
type ComputedPreflopLoader struct{}

func (ComputedPreflopLoader) Load(tools *cardtools.CardTools, strength handstrength.Oracle) ([][]float64, error) {
	te := New(tools, strength)
	boards := tools.EnumerateLastRoundBoards(nil)
	matrix := newMatrix(tools.Settings().HandCount())
	te.setInnerCallMatrix(matrix, boards, 1)
	return matrix, nil
}

// TerminalEquity precomputes call/fold matrices for a fixed board.
type TerminalEquity struct {
	tools    *cardtools.CardTools
	strength handstrength.Oracle
	pfLoader PreflopEquityLoader
	hc       int

	board        []int
	equityMatrix [][]float64
	foldMatrix   [][]float64
	blockMatrix  [][]float64 // lazily built, cached for the lifetime of tools
}

// New constructs a TerminalEquity for the given combinatorics and
// hand-strength oracle. Defaults to ComputedPreflopLoader; override with
// SetPreflopLoader for a production artifact-backed loader.
func New(tools *cardtools.CardTools, strength handstrength.Oracle) *TerminalEquity {
	return &TerminalEquity{
		tools:    tools,
		strength: strength,
		pfLoader: ComputedPreflopLoader{},
		hc:       tools.Settings().HandCount(),
	}
}

// SetPreflopLoader overrides how the preflop equity table is obtained.
func (te *TerminalEquity) SetPreflopLoader(loader PreflopEquityLoader) {
	te.pfLoader = loader
}

func newMatrix(hc int) [][]float64 {
	m := make([][]float64, hc)
	for i := range m {
		m[i] = make([]float64, hc)
	}
	return m
}

// SetBoard builds the call and fold matrices for board, choosing the
// construction path by street: preflop loads a persisted table, the final
// street evaluates showdowns directly, inner streets average over every
// future-board extension. Calling SetBoard again with the same board is a
// no-op.
func (te *TerminalEquity) SetBoard(board []int) error {
	if sameBoard(te.board, board) {
		return nil
	}
	settings := te.tools.Settings()
	street := te.tools.BoardToStreet(board)

	switch {
	case street == 1:
		m, err := te.pfLoader.Load(te.tools, te.strength)
		if err != nil {
			return fmt.Errorf("terminalequity: loading preflop table: %w", err)
		}
		te.equityMatrix = m
		te.handleBlockingCards(te.equityMatrix, board)
	case street == settings.StreetsCount:
		te.equityMatrix = newMatrix(te.hc)
		te.setLastRoundCallMatrix(te.equityMatrix, board)
		te.handleBlockingCards(te.equityMatrix, board)
	default:
		te.equityMatrix = newMatrix(te.hc)
		boards := te.tools.EnumerateLastRoundBoards(board)
		te.setInnerCallMatrix(te.equityMatrix, boards, street)
		te.handleBlockingCards(te.equityMatrix, board)
	}

	te.foldMatrix = newMatrix(te.hc)
	for i := range te.foldMatrix {
		for j := range te.foldMatrix[i] {
			te.foldMatrix[i][j] = 1
		}
	}
	te.handleBlockingCards(te.foldMatrix, board)
	te.board = append([]int{}, board...)
	return nil
}

func sameBoard(a, b []int) bool {
	if a == nil || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// setLastRoundCallMatrix fills call_matrix[i][j] = sign(strength(i)-strength(j))
// directly from the river showdown, matching set_last_round_call_matrix.
func (te *TerminalEquity) setLastRoundCallMatrix(callMatrix [][]float64, board []int) {
	holes := te.tools.AllHoles()
	strength := make([]float64, te.hc)
	for i, hole := range holes {
		strength[i] = te.strength.Strength(hole, board)
	}
	for i := range callMatrix {
		for j := range callMatrix[i] {
			switch {
			case strength[i] > strength[j]:
				callMatrix[i][j] = 1
			case strength[i] < strength[j]:
				callMatrix[i][j] = -1
			default:
				callMatrix[i][j] = 0
			}
		}
	}
}

// setInnerCallMatrix averages the river call matrix over every board
// extension reachable from street, masking out hole/board conflicts per
// extension and normalizing by the number of ways the remaining deck could
// fill in the unseen cards, matching set_inner_call_matrix.
func (te *TerminalEquity) setInnerCallMatrix(callMatrix [][]float64, nextRoundBoards [][]int, street int) {
	holes := te.tools.AllHoles()
	settings := te.tools.Settings()

	for _, extBoard := range nextRoundBoards {
		used := make([]bool, settings.CardCount)
		for _, c := range extBoard {
			used[c] = true
		}
		possible := make([]bool, te.hc)
		strength := make([]float64, te.hc)
		for i, hole := range holes {
			conflict := false
			for _, c := range hole {
				if used[c] {
					conflict = true
					break
				}
			}
			possible[i] = !conflict
			if !conflict {
				strength[i] = te.strength.Strength(hole, extBoard)
			}
		}
		for i := 0; i < te.hc; i++ {
			if !possible[i] {
				continue
			}
			for j := 0; j < te.hc; j++ {
				if !possible[j] {
					continue
				}
				switch {
				case strength[i] > strength[j]:
					callMatrix[i][j] += 1
				case strength[i] < strength[j]:
					callMatrix[i][j] -= 1
				}
			}
		}
	}

	numCardsOnBoard := settings.BoardCardCount[street-1]
	cardsToCome := settings.BoardCardCount[settings.StreetsCount-1] - numCardsOnBoard
	cardsLeft := settings.CardCount - (settings.HandCardCount*settings.PlayersCount + numCardsOnBoard)
	numPossibleHands := float64(cardtools.Choose(cardsLeft, cardsToCome))
	for i := range callMatrix {
		for j := range callMatrix[i] {
			callMatrix[i][j] /= numPossibleHands
		}
	}
}

// handleBlockingCards zeroes entries for hands that conflict with the board
// or with each other, matching _handle_blocking_cards.
func (te *TerminalEquity) handleBlockingCards(matrix [][]float64, board []int) {
	mask := te.tools.PossibleHandsMask(board)
	block := te.blockMatrixCached()
	for i := range matrix {
		for j := range matrix[i] {
			matrix[i][j] *= mask[i] * mask[j] * block[i][j]
		}
	}
}

func (te *TerminalEquity) blockMatrixCached() [][]float64 {
	if te.blockMatrix != nil {
		return te.blockMatrix
	}
	holes := te.tools.AllHoles()
	block := newMatrix(te.hc)
	for i := range block {
		for j := range block[i] {
			block[i][j] = 1
		}
	}
	for i, hi := range holes {
		for j, hj := range holes {
			if i == j {
				continue
			}
			if sharesCard(hi, hj) {
				block[i][j] = 0
			}
		}
	}
	te.blockMatrix = block
	return block
}

func sharesCard(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// CallValue computes, for a batch of opponent ranges, the cfvs a player
// achieves at a showdown terminal: result = ranges . equityMatrix.
func (te *TerminalEquity) CallValue(ranges, result [][]float64) {
	matVec(te.equityMatrix, ranges, result)
}

// FoldValue computes, for a batch of opponent ranges, the (unsigned) cfvs a
// player achieves at a fold terminal: result = ranges . foldMatrix. The
// caller must negate for whichever player folded.
func (te *TerminalEquity) FoldValue(ranges, result [][]float64) {
	matVec(te.foldMatrix, ranges, result)
}

// matVec computes result[n] = ranges[n] . matrix for every batch row n.
func matVec(matrix, ranges, result [][]float64) {
	hc := len(matrix)
	for n := range ranges {
		for j := 0; j < hc; j++ {
			var sum float64
			for i := 0; i < hc; i++ {
				sum += ranges[n][i] * matrix[i][j]
			}
			result[n][j] = sum
		}
	}
}

// TreeNodeCallValue computes both players' showdown cfvs from both players'
// ranges, with the swapped-index convention: player 0's result derives from
// player 1's range and vice versa.
func (te *TerminalEquity) TreeNodeCallValue(ranges, result [2][]float64) {
	te.CallValue([][]float64{ranges[0]}, [][]float64{result[1]})
	te.CallValue([][]float64{ranges[1]}, [][]float64{result[0]})
}

// TreeNodeFoldValue computes both players' fold cfvs, then negates the
// folding player's share.
func (te *TerminalEquity) TreeNodeFoldValue(ranges, result [2][]float64, foldingPlayer int) {
	te.FoldValue([][]float64{ranges[0]}, [][]float64{result[1]})
	te.FoldValue([][]float64{ranges[1]}, [][]float64{result[0]})
	for i := range result[foldingPlayer] {
		result[foldingPlayer][i] *= -1
	}
}
