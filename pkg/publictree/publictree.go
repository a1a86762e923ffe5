// Package publictree builds the public game tree the lookahead engine
// resolves over: a tree of betting decisions, chance transitions and
// terminals, keyed only by public state (board, bets, who acts) with no
// hole cards attached. Ranges and equities are layered on top by the
// terminalequity and lookahead packages.
package publictree

import (
	"fmt"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/notation"
)

// Kind identifies what a Node represents.
type Kind int

const (
	Decision Kind = iota
	Chance
	TerminalFold
	TerminalShowdown
)

func (k Kind) String() string {
	switch k {
	case Decision:
		return "decision"
	case Chance:
		return "chance"
	case TerminalFold:
		return "terminal_fold"
	case TerminalShowdown:
		return "terminal_showdown"
	default:
		return "unknown"
	}
}

// Node is one public-state vertex: street, board, whose turn it is, both
// players' committed chips, and the children reached by each action. A
// Chance node with no children marks a depth-limited transition the
// lookahead must hand off to a next-street oracle instead of expanding.
type Node struct {
	Street        int
	Board         []int
	CurrentPlayer int
	Bets          [2]float64
	Children      []*Node
	Actions       []notation.Action
	Kind          Kind

	// Depth is the node's distance from the root. lookahead.Build does not
	// read it; it tracks depth itself while walking the tree.
	Depth int
}

func (n *Node) IsTerminal() bool {
	return n.Kind == TerminalFold || n.Kind == TerminalShowdown
}

// Params configures tree construction.
type Params struct {
	Tools         *cardtools.CardTools
	Board         []int
	Bets          [2]float64
	FirstToAct    int
	Stacks        [2]float64
	BetSizes      []float64 // pot fractions offered at every decision node
	AllowAllIn    bool
	LimitToStreet bool // stop expanding chance nodes past the root street
	MaxBetsPerRound int

	// GeometricPot, if set, derives BetSizes at each decision node from a
	// GeometricSizing targeting this final pot over the tree's remaining
	// streets instead of using a fixed BetSizes list.
	GeometricPot       float64
	GeometricNumSizes  int
}

// Builder constructs a public tree rooted at params' state.
type Builder interface {
	Build(params Params) (*Node, error)
}

// TreeBuilder is the reference Builder, generalized from a fixed-game
// betting-tree walk into one driven by cardtools combinatorics so it works
// at Leduc scale (single private card, two streets) and Texas scale alike.
type TreeBuilder struct{}

func NewTreeBuilder() *TreeBuilder { return &TreeBuilder{} }

func (b *TreeBuilder) Build(params Params) (*Node, error) {
	if params.Tools == nil {
		return nil, fmt.Errorf("publictree: params.Tools is required")
	}
	if len(params.BetSizes) == 0 && !params.AllowAllIn && params.GeometricPot <= 0 {
		return nil, fmt.Errorf("publictree: at least one bet size, GeometricPot or AllowAllIn is required")
	}
	rootStreet := params.Tools.BoardToStreet(params.Board)
	return b.buildNode(params, params.Board, nil, params.Bets, params.FirstToAct, rootStreet, 0), nil
}

// buildNode recurses over betting rounds, dispatching to a chance expansion
// (or depth-limited box) whenever a street's action closes.
func (b *TreeBuilder) buildNode(params Params, board []int, history []notation.Action, bets [2]float64, toAct int, rootStreet int, depth int) *Node {
	if last, ok := lastAction(history); ok && last.Type == notation.Fold {
		folder := 1 - toAct
		return &Node{Street: params.Tools.BoardToStreet(board), Board: board, CurrentPlayer: folder, Bets: bets, Kind: TerminalFold, Depth: depth}
	}

	if roundClosed(history) {
		settings := params.Tools.Settings()
		street := params.Tools.BoardToStreet(board)

		if street == settings.StreetsCount {
			return &Node{Street: street, Board: board, CurrentPlayer: toAct, Bets: bets, Kind: TerminalShowdown, Depth: depth}
		}
		if params.LimitToStreet && street >= rootStreet {
			return &Node{Street: street, Board: board, CurrentPlayer: toAct, Bets: bets, Kind: Chance, Depth: depth}
		}

		node := &Node{Street: street, Board: board, CurrentPlayer: toAct, Bets: bets, Kind: Chance, Depth: depth}
		for _, nextBoard := range params.Tools.EnumerateNextRoundBoards(board) {
			child := b.buildNode(params, nextBoard, nil, bets, params.FirstToAct, rootStreet, depth+1)
			node.Children = append(node.Children, child)
			node.Actions = append(node.Actions, notation.Action{Type: notation.Call})
		}
		return node
	}

	actions := GenerateActions(bets, params.Stacks, history, params)
	node := &Node{Street: params.Tools.BoardToStreet(board), Board: board, CurrentPlayer: toAct, Bets: bets, Kind: Decision, Depth: depth}
	for _, action := range actions {
		childBets := applyAction(bets, toAct, action, params.Stacks)
		childHistory := append(append([]notation.Action{}, history...), action)
		child := b.buildNode(params, board, childHistory, childBets, 1-toAct, rootStreet, depth+1)
		node.Children = append(node.Children, child)
		node.Actions = append(node.Actions, action)
	}
	return node
}

func lastAction(history []notation.Action) (notation.Action, bool) {
	if len(history) == 0 {
		return notation.Action{}, false
	}
	return history[len(history)-1], true
}

// roundClosed reports whether the current street's betting is finished:
// either both players have checked, or a bet has been met by a call.
func roundClosed(history []notation.Action) bool {
	n := len(history)
	if n == 0 {
		return false
	}
	last := history[n-1]
	if last.Type == notation.Call {
		return true
	}
	if n >= 2 && last.Type == notation.Check && history[n-2].Type == notation.Check {
		return true
	}
	return false
}

func applyAction(bets [2]float64, actor int, action notation.Action, stacks [2]float64) [2]float64 {
	next := bets
	switch action.Type {
	case notation.Check:
		// no chip movement
	case notation.Call:
		next[actor] = next[1-actor]
		if next[actor] > stacks[actor] {
			next[actor] = stacks[actor]
		}
	case notation.Bet, notation.Raise:
		next[actor] = action.Amount
		if next[actor] > stacks[actor] {
			next[actor] = stacks[actor]
		}
	}
	return next
}
