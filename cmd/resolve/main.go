// Command resolve runs one depth-limited continual-resolving query against a
// FEN-style position string, replacing the teacher's batch poker-solver CLI
// with a single-node resolve call over the lookahead/resolving packages.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/behrlich/resolver/internal/config"
	"github.com/behrlich/resolver/internal/telemetry"
	"github.com/behrlich/resolver/pkg/cards"
	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/handstrength"
	"github.com/behrlich/resolver/pkg/lookahead"
	"github.com/behrlich/resolver/pkg/notation"
	"github.com/behrlich/resolver/pkg/oracle"
	"github.com/behrlich/resolver/pkg/publictree"
	"github.com/behrlich/resolver/pkg/resolving"
)

var cli struct {
	Position string `arg:"" help:"FEN-style position, e.g. BTN:AsKd:S100/BB:QhQd:S100|P10|Kh9s4c7d2s|>BTN"`

	Config    string  `help:"path to a YAML parameters file overriding the Texas Hold'em defaults"`
	Iters     int     `help:"CFR+ iterations (0 keeps the config value)"`
	SkipIters int     `help:"CFR+ iterations to skip before averaging (0 keeps the config value)"`
	Geometric bool    `help:"derive bet sizes from a geometric pot schedule instead of the fixed list"`
	TargetPot float64 `help:"target pot (in bb) for geometric sizing" default:"30"`
	NumSizes  int     `help:"number of geometric bet sizes to offer" default:"1"`
	LogLevel  string  `help:"log level (debug|info|warn|error)" default:"info"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("resolve"),
		kong.Description("depth-limited re-solving over a single public position"),
		kong.UsageOnError(),
	)

	log := telemetry.New(cli.LogLevel)

	if err := run(log); err != nil {
		log.Error("resolve failed", "err", err)
		os.Exit(1)
	}
}

func run(log *telemetry.Logger) error {
	params, err := loadParams()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cli.Iters > 0 {
		params.CFR.Iters = cli.Iters
	}
	if cli.SkipIters > 0 {
		params.CFR.SkipIters = cli.SkipIters
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	gs, err := notation.ParsePosition(cli.Position)
	if err != nil {
		return fmt.Errorf("parsing position: %w", err)
	}
	if len(gs.Players) != 2 {
		return fmt.Errorf("only 2-player games are supported, got %d", len(gs.Players))
	}

	log.Info("position parsed", "street", gs.Street.String(), "pot", gs.Pot, "to_act", gs.Players[gs.ToAct].Position)

	tools := cardtools.New(params.Game.ToCardToolsSettings())
	strength := handstrength.NewTexasAdapter()

	board := cardsToIndices(gs.Board)
	samples := params.Rollout.Samples
	nso := oracle.NewRolloutOracle(tools, strength, board, samples, params.Rollout.Seed)
	builder := publictree.NewTreeBuilder()

	resolver := resolving.New(tools, strength, nso, builder)
	resolver.LookaheadCFG = params.CFR.ToLookaheadParams()

	playerRange, err := rangeVector(tools, board, gs.Players[gs.ToAct].Range)
	if err != nil {
		return fmt.Errorf("building %s range: %w", gs.Players[gs.ToAct].Position, err)
	}
	oppIdx := 1 - gs.ToAct
	opponentRange, err := rangeVector(tools, board, gs.Players[oppIdx].Range)
	if err != nil {
		return fmt.Errorf("building %s range: %w", gs.Players[oppIdx].Position, err)
	}

	// Without full action-history replay, split the parsed pot evenly between
	// both players' committed chips: exact for the common case of a single
	// starting position with no history this street.
	committed := gs.Pot / 2
	node := &publictree.Node{
		Street:        int(gs.Street),
		Board:         board,
		CurrentPlayer: gs.ToAct,
		Bets:          [2]float64{committed, committed},
	}

	input := resolving.Input{
		Node:          node,
		PlayerRange:   playerRange,
		OpponentRange: opponentRange,
		BetSizes:      params.Tree.BetSizes,
		AllowAllIn:    params.Tree.AllowAllIn,
		Stacks:        [2]float64{gs.Players[0].Stack, gs.Players[1].Stack},
	}
	if cli.Geometric {
		input.GeometricPot = cli.TargetPot
		input.GeometricSizes = cli.NumSizes
	}

	log.Info("resolving", "iters", resolver.LookaheadCFG.CFRIters, "skip_iters", resolver.LookaheadCFG.CFRSkipIters)
	results, err := resolver.Resolve(input)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	printResults(tools, results)
	return nil
}

func loadParams() (config.Parameters, error) {
	if cli.Config == "" {
		return config.DefaultTexas(), nil
	}
	return config.LoadOnto(cli.Config, config.DefaultTexas())
}

// cardsToIndices converts notation cards to the package-wide [0,CardCount)
// encoding, matching handstrength.TexasAdapter's rank*4+suit layout.
func cardsToIndices(cs []cards.Card) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = int(c.Rank)*4 + int(c.Suit)
	}
	return out
}

// rangeVector builds a per-hole-index probability vector from a parsed combo
// range, masking out combinations blocked by the board and renormalizing.
func rangeVector(tools *cardtools.CardTools, board []int, combos []notation.Combo) ([]float64, error) {
	hc := tools.Settings().HandCount()
	out := make([]float64, hc)
	for _, combo := range combos {
		hole := []int{int(combo.Card1.Rank)*4 + int(combo.Card1.Suit), int(combo.Card2.Rank)*4 + int(combo.Card2.Suit)}
		if hole[0] == hole[1] {
			continue
		}
		if hole[0] > hole[1] {
			hole[0], hole[1] = hole[1], hole[0]
		}
		if !tools.HandIsPossible(hole) {
			continue
		}
		out[tools.HoleIndex(hole)] += 1
	}

	mask := tools.PossibleHandsMask(board)
	total := 0.0
	for i := range out {
		out[i] *= mask[i]
		total += out[i]
	}
	if total == 0 {
		return nil, fmt.Errorf("range has no unblocked combos on this board")
	}
	for i := range out {
		out[i] /= total
	}
	return out, nil
}

func printResults(tools *cardtools.CardTools, results lookahead.Results) {
	fmt.Println("=== ROOT STRATEGY ===")
	printStrategy(tools, results.Strategy)

	fmt.Println("\n=== ACHIEVED OPPONENT CFVS ===")
	printPerHand(results.AchievedCFVs)

	if results.RootCFVs != nil {
		fmt.Println("\n=== ROOT CFVS (RESOLVING PLAYER) ===")
		printPerHand(results.RootCFVs)
	}
}

func printStrategy(tools *cardtools.CardTools, strategy [][]float64) {
	hc := tools.Settings().HandCount()
	for h := 0; h < hc; h++ {
		fmt.Printf("  hand %d:", h)
		for a := range strategy {
			fmt.Printf(" a%d=%.3f", a, strategy[a][h])
		}
		fmt.Println()
	}
}

func printPerHand(values []float64) {
	for h, v := range values {
		if v == 0 {
			continue
		}
		fmt.Printf("  hand %d: %.4f\n", h, v)
	}
}
