// Package handstrength wraps the core's external hand-strength collaborator
// behind a single interface, so terminal-equity construction never depends
// on a concrete evaluator. Two adapters are provided: one over the Texas
// Hold'em 7-card evaluator, one for Leduc-scale games where hole cards alone
// (plus a single board card) determine strength.
package handstrength

import (
	"github.com/behrlich/resolver/pkg/cards"
)

// Oracle ranks a private hand against a board: higher Strength means a
// stronger hand. Implementations need not agree on absolute scale, only on
// ordering, since terminal-equity only ever compares two Strength outputs.
type Oracle interface {
	// Strength returns a comparable hand value for the given hole cards on
	// the given board. Card indices are in the package's own [0,CardCount)
	// encoding, not cards.Card.
	Strength(hole, board []int) float64
}

// TexasAdapter evaluates 2-card holes plus a 5-card board using the
// teacher's 7-card evaluator, encoding card index i as rank=i/4, suit=i%4
// (index = Rank*4+Suit — see cardIndexToCard). cards.Evaluate takes exactly
// 7 cards, so shorter boards are not supported.
type TexasAdapter struct{}

func NewTexasAdapter() *TexasAdapter { return &TexasAdapter{} }

func cardIndexToCard(i int) cards.Card {
	return cards.Card{Rank: cards.Rank(i / 4), Suit: cards.Suit(i % 4)}
}

func (TexasAdapter) Strength(hole, board []int) float64 {
	all := make([]cards.Card, 0, len(hole)+len(board))
	for _, h := range hole {
		all = append(all, cardIndexToCard(h))
	}
	for _, b := range board {
		all = append(all, cardIndexToCard(b))
	}
	value := cards.Evaluate(all)
	// Pack HandValue into a single comparable float: rank dominates, then
	// kicker values in descending significance, matching HandValue.Compare.
	score := float64(value.Rank) * 1e10
	mult := 1e8
	for _, v := range value.Values {
		score += float64(v) * mult
		mult /= 13
	}
	return score
}

// LeducAdapter ranks Leduc-style hands: a pair with the board beats any
// unpaired hand, otherwise higher rank wins. Hole and board cards are single
// card indices over a deck with suitsPerRank suits of each of CardCount/
// suitsPerRank ranks (the standard Leduc deck is 3 ranks x 2 suits = 6
// cards), so two distinct card indices can still share a rank.
type LeducAdapter struct {
	suitsPerRank int
}

// NewLeducAdapter builds the standard 2-suit Leduc adapter.
func NewLeducAdapter() *LeducAdapter { return &LeducAdapter{suitsPerRank: 2} }

// NewLeducAdapterWithSuits builds a Leduc adapter over a deck with the given
// number of suits per rank.
func NewLeducAdapterWithSuits(suitsPerRank int) *LeducAdapter {
	return &LeducAdapter{suitsPerRank: suitsPerRank}
}

func (a LeducAdapter) rank(card int) int { return card / a.suitsPerRank }

func (a LeducAdapter) Strength(hole, board []int) float64 {
	hr := a.rank(hole[0])
	if len(board) == 0 {
		return float64(hr)
	}
	br := a.rank(board[0])
	if hr == br {
		return 1000 + float64(hr) // paired with board beats every unpaired hand
	}
	return float64(hr)
}
