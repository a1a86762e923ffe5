package cardtools

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyPossibleHandsMaskExcludesSharedCards checks, for arbitrary
// boards and hole cards, that sharing a card with the board always zeroes
// the mask entry for that hole.
func TestPropertyPossibleHandsMaskExcludesSharedCards(t *testing.T) {
	ct := New(texasSettings())
	rapid.Check(t, func(rt *rapid.T) {
		boardCard := rapid.IntRange(0, 51).Draw(rt, "boardCard")
		otherCard := rapid.IntRange(0, 51).Filter(func(c int) bool { return c != boardCard }).Draw(rt, "otherCard")

		mask := ct.PossibleHandsMask([]int{boardCard})
		lo, hi := boardCard, otherCard
		if lo > hi {
			lo, hi = hi, lo
		}
		idx := ct.HoleIndex([]int{lo, hi})
		if lo == boardCard || hi == boardCard {
			if mask[idx] != 0 {
				rt.Fatalf("hole (%d,%d) shares board card %d but mask = %v", lo, hi, boardCard, mask[idx])
			}
		}
	})
}

// TestPropertyChooseSymmetry checks C(n,k) == C(n,n-k) over random small n,k.
func TestPropertyChooseSymmetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")
		if Choose(n, k) != Choose(n, n-k) {
			rt.Fatalf("C(%d,%d)=%d != C(%d,%d)=%d", n, k, Choose(n, k), n, n-k, Choose(n, n-k))
		}
	})
}
