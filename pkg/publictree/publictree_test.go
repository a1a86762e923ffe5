package publictree

import (
	"testing"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/notation"
	"github.com/stretchr/testify/require"
)

func leducTools() *cardtools.CardTools {
	return cardtools.New(cardtools.Settings{
		CardCount:      6,
		HandCardCount:  1,
		BoardCardCount: []int{0, 1},
		StreetsCount:   2,
		PlayersCount:   2,
	})
}

func TestBuildRiverTreeReachesShowdownAndFold(t *testing.T) {
	tools := leducTools()
	params := Params{
		Tools:         tools,
		Board:         []int{2},
		Bets:          [2]float64{1, 1},
		FirstToAct:    0,
		Stacks:        [2]float64{10, 10},
		BetSizes:      []float64{1.0},
		LimitToStreet: true,
	}
	root, err := NewTreeBuilder().Build(params)
	require.NoError(t, err)
	require.Equal(t, Decision, root.Kind)

	var foundFold, foundShowdown bool
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Kind {
		case TerminalFold:
			foundFold = true
		case TerminalShowdown:
			foundShowdown = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	require.True(t, foundFold, "expected a fold terminal somewhere in the tree")
	require.True(t, foundShowdown, "expected a showdown terminal somewhere in the tree")
}

func TestBuildPreflopTreeLimitedToStreetStopsAtChance(t *testing.T) {
	tools := leducTools()
	params := Params{
		Tools:         tools,
		Board:         nil,
		Bets:          [2]float64{1, 1},
		FirstToAct:    0,
		Stacks:        [2]float64{10, 10},
		BetSizes:      []float64{1.0},
		LimitToStreet: true,
	}
	root, err := NewTreeBuilder().Build(params)
	require.NoError(t, err)

	var foundUnexpandedChance bool
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Kind == Chance && len(n.Children) == 0 {
			foundUnexpandedChance = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	require.True(t, foundUnexpandedChance, "limit-to-street build should leave a depth-limited chance node unexpanded")
}

func TestGenerateActionsFacingBetIncludesFold(t *testing.T) {
	tools := leducTools()
	params := Params{Tools: tools, FirstToAct: 0, BetSizes: []float64{1.0}}
	bets := [2]float64{2, 1}
	actions := GenerateActions(bets, [2]float64{10, 10}, []notation.Action{{Type: notation.Bet, Amount: 2}}, params)
	var hasFold, hasCall bool
	for _, a := range actions {
		if a.Type == notation.Fold {
			hasFold = true
		}
		if a.Type == notation.Call {
			hasCall = true
		}
	}
	require.True(t, hasFold)
	require.True(t, hasCall)
}
