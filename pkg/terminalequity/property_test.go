package terminalequity

import (
	"testing"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"pgregory.net/rapid"
)

func smallTwoCardTools() *cardtools.CardTools {
	return cardtools.New(cardtools.Settings{
		CardCount:      9,
		HandCardCount:  2,
		BoardCardCount: []int{0, 3, 4, 5},
		StreetsCount:   4,
		PlayersCount:   2,
	})
}

// TestPropertyBlockedHolesAreZero checks that whenever two hole indices
// share a card, both the equity matrix and the fold matrix are zero at that
// entry, for arbitrary 3-card boards on a small two-card-hole game (mirrors
// Texas hole size at a tractable card count; 9 cards is the smallest deck
// that deals two holes plus a 5-card board).
func TestPropertyBlockedHolesAreZero(t *testing.T) {
	tools := smallTwoCardTools()
	te := New(tools, handstrength.NewTexasAdapter())

	rapid.Check(t, func(rt *rapid.T) {
		c1 := rapid.IntRange(0, 8).Draw(rt, "c1")
		c2 := rapid.IntRange(0, 8).Filter(func(c int) bool { return c != c1 }).Draw(rt, "c2")
		c3 := rapid.IntRange(0, 8).Filter(func(c int) bool { return c != c1 && c != c2 }).Draw(rt, "c3")
		board := []int{min3(c1, c2, c3), mid3(c1, c2, c3), max3(c1, c2, c3)}
		if err := te.SetBoard(board); err != nil {
			rt.Fatal(err)
		}
		holes := tools.AllHoles()
		for i, hi := range holes {
			for j, hj := range holes {
				if i == j {
					continue
				}
				if sharesCard(hi, hj) {
					if te.equityMatrix[i][j] != 0 || te.foldMatrix[i][j] != 0 {
						rt.Fatalf("holes %v,%v share a card but matrices nonzero", hi, hj)
					}
				}
			}
		}
	})
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func mid3(a, b, c int) int {
	return a + b + c - min3(a, b, c) - max3(a, b, c)
}
