// Package cardtools provides combinatorial indexing over boards and private
// hands: colex ranking of hole cards, board enumeration for street
// transitions, and the possible-hand masking used throughout terminal-equity
// and lookahead construction.
package cardtools

import (
	"errors"
	"fmt"
)

// ErrInvalidCards is returned when a card repeats or falls outside the deck.
var ErrInvalidCards = errors.New("cardtools: invalid cards")

// Settings pins the game-size constants the rest of the package is generic
// over (Leduc vs. Texas Hold'em). Constructed once and passed by reference;
// no package-level mutable state.
type Settings struct {
	CardCount      int   // cards in the deck
	HandCardCount  int   // private cards per hand (1 for Leduc, 2 for Texas)
	BoardCardCount []int // cumulative board cards per street, indexed by street-1 (index 0 is preflop)
	StreetsCount   int
	PlayersCount   int
}

// HandCount is the number of distinct private hands C(CardCount, HandCardCount).
func (s Settings) HandCount() int {
	return Choose(s.CardCount, s.HandCardCount)
}

// CardTools is the combinatorial toolbox for a fixed Settings.
type CardTools struct {
	settings    Settings
	flopBoardIx [][][]int // memoized 3-card board index, built lazily
	allHoles    [][]int   // memoized hole-index -> hole cards table
}

// New constructs a CardTools for the given game settings.
func New(settings Settings) *CardTools {
	return &CardTools{settings: settings}
}

// Settings returns the game settings this CardTools was built with.
func (ct *CardTools) Settings() Settings { return ct.settings }

// validateHand checks that every card is in range and none repeats.
func (ct *CardTools) validateHand(hand []int) error {
	seen := make(map[int]bool, len(hand))
	for _, c := range hand {
		if c < 0 || c >= ct.settings.CardCount {
			return fmt.Errorf("%w: card %d out of range [0,%d)", ErrInvalidCards, c, ct.settings.CardCount)
		}
		if seen[c] {
			return fmt.Errorf("%w: card %d repeated", ErrInvalidCards, c)
		}
		seen[c] = true
	}
	return nil
}

// HandIsPossible reports whether a hand is a valid set of distinct, in-range cards.
func (ct *CardTools) HandIsPossible(hand []int) bool {
	return ct.validateHand(hand) == nil
}

// HoleIndex gives the colex rank of a sorted k-subset of cards, matching
// card_tools.get_hole_index: index = sum_i choose(hand[i], i+1), 0-based.
func (ct *CardTools) HoleIndex(sortedHand []int) int {
	index := 1
	for i, c := range sortedHand {
		index += Choose(c+1-1, i+1)
	}
	return index - 1
}

// BoardIndex gives the rank of a board's last card among the cards not used
// by the earlier board cards: its position in
// EnumerateNextRoundBoards(board[:len(board)-1]).
func (ct *CardTools) BoardIndex(board []int) int {
	if len(board) <= 3 {
		panic("cardtools: BoardIndex requires more than 3 board cards; use FlopIndex for the flop")
	}
	used := make([]bool, ct.settings.CardCount)
	for i := 0; i < len(board)-1; i++ {
		used[board[i]] = true
	}
	ans := -1
	last := board[len(board)-1]
	for i := 0; i < ct.settings.CardCount; i++ {
		if !used[i] {
			ans++
		}
		if i == last {
			return ans
		}
	}
	return -1
}

// FlopIndex gives the memoized index of a 3-card flop board, independent of
// the order the three cards are given in.
func (ct *CardTools) FlopIndex(c1, c2, c3 int) int {
	if ct.flopBoardIx == nil {
		ct.buildFlopIndex()
	}
	return ct.flopBoardIx[c1][c2][c3]
}

func (ct *CardTools) buildFlopIndex() {
	cc := ct.settings.CardCount
	ct.flopBoardIx = make([][][]int, cc)
	for i := range ct.flopBoardIx {
		ct.flopBoardIx[i] = make([][]int, cc)
		for j := range ct.flopBoardIx[i] {
			ct.flopBoardIx[i][j] = make([]int, cc)
		}
	}
	boards := ct.EnumerateNextRoundBoards(nil)
	for idx, board := range boards {
		c1, c2, c3 := board[0], board[1], board[2]
		perms := [][3]int{
			{c1, c2, c3}, {c1, c3, c2},
			{c2, c1, c3}, {c2, c3, c1},
			{c3, c1, c2}, {c3, c2, c1},
		}
		for _, p := range perms {
			ct.flopBoardIx[p[0]][p[1]][p[2]] = idx
		}
	}
}

// PossibleHandsMask returns, for every private hand index, 1 if the hand
// shares no card with board, 0 otherwise.
func (ct *CardTools) PossibleHandsMask(board []int) []float64 {
	hc := ct.settings.HandCount()
	out := make([]float64, hc)
	if len(board) == 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	used := make([]bool, ct.settings.CardCount)
	for _, c := range board {
		used[c] = true
	}
	ct.forEachHole(used, func(hole []int) {
		out[ct.HoleIndex(hole)] = 1
	})
	return out
}

// AllHoles returns the hole-card list for every private hand index, ordered
// so that AllHoles()[i] is the hand whose HoleIndex is i. Memoized.
func (ct *CardTools) AllHoles() [][]int {
	if ct.allHoles != nil {
		return ct.allHoles
	}
	hc := ct.settings.HandCount()
	holes := make([][]int, hc)
	used := make([]bool, ct.settings.CardCount)
	ct.forEachHole(used, func(hole []int) {
		holes[ct.HoleIndex(hole)] = append([]int{}, hole...)
	})
	ct.allHoles = holes
	return holes
}

// forEachHole enumerates every private hand not using a card marked in used.
// Only HandCardCount == 1 (Leduc) and == 2 (Texas) are supported, matching
// the street-sizes terminal_equity.py itself asserts on.
func (ct *CardTools) forEachHole(used []bool, fn func(hole []int)) {
	cc := ct.settings.CardCount
	switch ct.settings.HandCardCount {
	case 1:
		for c := 0; c < cc; c++ {
			if !used[c] {
				fn([]int{c})
			}
		}
	case 2:
		for c1 := 0; c1 < cc; c1++ {
			if used[c1] {
				continue
			}
			for c2 := c1 + 1; c2 < cc; c2++ {
				if !used[c2] {
					fn([]int{c1, c2})
				}
			}
		}
	default:
		panic(fmt.Sprintf("cardtools: unsupported hand card count %d", ct.settings.HandCardCount))
	}
}

// BoardToStreet maps a board's card count to its street number (1-based).
func (ct *CardTools) BoardToStreet(board []int) int {
	if len(board) == 0 {
		return 1
	}
	for i := 0; i < ct.settings.StreetsCount; i++ {
		if len(board) == ct.settings.BoardCardCount[i] {
			return i + 1
		}
	}
	panic(fmt.Sprintf("cardtools: board of length %d matches no street", len(board)))
}

// NextBoardsCount gives the number of distinct single-street extensions from
// the given street to the following one.
func (ct *CardTools) NextBoardsCount(street int) int {
	used := ct.settings.BoardCardCount[street-1]
	next := ct.settings.BoardCardCount[street]
	return Choose(ct.settings.CardCount-used, next-used)
}

// LastBoardsCount gives the number of distinct extensions from street all the
// way to the river.
func (ct *CardTools) LastBoardsCount(street int) int {
	used := ct.settings.BoardCardCount[street-1]
	last := ct.settings.BoardCardCount[ct.settings.StreetsCount-1]
	return Choose(ct.settings.CardCount-used, last-used)
}

// EnumerateNextRoundBoards enumerates, in canonical (sorted, lexicographic)
// order, every extension of board to the following street.
func (ct *CardTools) EnumerateNextRoundBoards(board []int) [][]int {
	street := ct.BoardToStreet(board)
	return ct.enumerateBoards(board, ct.settings.BoardCardCount[street])
}

// EnumerateLastRoundBoards enumerates every extension of board all the way
// to the final street (river).
func (ct *CardTools) EnumerateLastRoundBoards(board []int) [][]int {
	return ct.enumerateBoards(board, ct.settings.BoardCardCount[ct.settings.StreetsCount-1])
}

// enumerateBoards recursively fills in targetLen-len(board) new cards,
// sorted among themselves and skipping cards already on board, mirroring
// CardTools._build_boards in spirit (recursive enumeration rather than the
// index-juggling original, which this package does not need to reproduce).
func (ct *CardTools) enumerateBoards(board []int, targetLen int) [][]int {
	var out [][]int
	cur := append([]int{}, board...)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == targetLen {
			out = append(out, append([]int{}, cur...))
			return
		}
		for c := start; c < ct.settings.CardCount; c++ {
			if contains(cur, c) {
				continue
			}
			cur = append(cur, c)
			rec(c + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return out
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func max(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// UniformRange gives possible-hand mask normalized to sum 1.
func (ct *CardTools) UniformRange(board []int) []float64 {
	mask := ct.PossibleHandsMask(board)
	var sum float64
	for _, v := range mask {
		sum += v
	}
	for i := range mask {
		mask[i] /= sum
	}
	return mask
}

// IsValidRange checks that r puts zero probability on impossible hands and
// sums to 1 within tolerance, matching card_tools.is_valid_range.
func (ct *CardTools) IsValidRange(r []float64, board []int) bool {
	mask := ct.PossibleHandsMask(board)
	var sum, impossibleMass float64
	for i, v := range r {
		sum += v
		if mask[i] == 0 {
			impossibleMass += v
		}
	}
	return impossibleMass == 0 && abs(1.0-sum) < 1e-4
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Choose computes the binomial coefficient C(n,k). Returns 0 for
// out-of-range k, matching the convention used throughout card_tools.py.
// Deliberately uncached: a shared memo table would be package-level mutable
// state, which this package avoids (SPEC_FULL.md §9), and the arithmetic
// below is cheap enough that a cache isn't worth the synchronization it
// would need.
func Choose(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
