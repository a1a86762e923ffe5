// Package config loads and validates the process-wide settings a resolve
// run needs: game constants, CFR+ tuning, and bet-tree shape. Grounded on
// the teacher's Validate()-per-struct pattern: explicit field-by-field
// checks instead of a schema validator.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/behrlich/resolver/pkg/cardtools"
	"github.com/behrlich/resolver/pkg/lookahead"
)

// GameConfig are the combinatorial constants for the variant being solved.
type GameConfig struct {
	CardCount      int   `yaml:"card_count"`
	HandCardCount  int   `yaml:"hand_card_count"`
	BoardCardCount []int `yaml:"board_card_count"`
	StreetsCount   int   `yaml:"streets_count"`
	PlayersCount   int   `yaml:"players_count"`
}

// Validate checks the game constants are internally consistent.
func (g GameConfig) Validate() error {
	if g.CardCount <= 0 {
		return fmt.Errorf("config: card_count must be > 0")
	}
	if g.HandCardCount <= 0 {
		return fmt.Errorf("config: hand_card_count must be > 0")
	}
	if g.PlayersCount != 2 {
		return fmt.Errorf("config: players_count must be 2, got %d", g.PlayersCount)
	}
	if len(g.BoardCardCount) != g.StreetsCount {
		return fmt.Errorf("config: board_card_count must have streets_count=%d entries, got %d", g.StreetsCount, len(g.BoardCardCount))
	}
	last := 0
	for i, c := range g.BoardCardCount {
		if c < last {
			return fmt.Errorf("config: board_card_count[%d] must be non-decreasing", i)
		}
		last = c
	}
	return nil
}

// ToCardToolsSettings adapts the loaded constants to cardtools.Settings.
func (g GameConfig) ToCardToolsSettings() cardtools.Settings {
	return cardtools.Settings{
		CardCount:      g.CardCount,
		HandCardCount:  g.HandCardCount,
		BoardCardCount: append([]int{}, g.BoardCardCount...),
		StreetsCount:   g.StreetsCount,
		PlayersCount:   g.PlayersCount,
	}
}

// TreeConfig shapes the action abstraction the public-tree builder offers.
type TreeConfig struct {
	BetSizes        []float64 `yaml:"bet_sizes"`
	AllowAllIn      bool      `yaml:"allow_all_in"`
	GeometricPot    float64   `yaml:"geometric_pot"`
	GeometricSizes  int       `yaml:"geometric_sizes"`
	Ante            float64   `yaml:"ante"`
	Stack           float64   `yaml:"stack"`
}

// Validate checks the bet-sizing abstraction is well-formed.
func (t TreeConfig) Validate() error {
	if len(t.BetSizes) == 0 && !t.AllowAllIn && t.GeometricPot == 0 {
		return fmt.Errorf("config: at least one bet size, all-in, or a geometric pot target is required")
	}
	last := 0.0
	for i, v := range t.BetSizes {
		if v <= 0 {
			return fmt.Errorf("config: bet_sizes[%d] must be > 0", i)
		}
		if v <= last {
			return fmt.Errorf("config: bet_sizes[%d] must be strictly increasing", i)
		}
		last = v
	}
	if t.Ante < 0 {
		return fmt.Errorf("config: ante cannot be negative")
	}
	if t.Stack <= 0 {
		return fmt.Errorf("config: stack must be > 0")
	}
	return nil
}

// CFRConfig mirrors lookahead.Params for YAML loading.
type CFRConfig struct {
	Iters         int     `yaml:"iters"`
	SkipIters     int     `yaml:"skip_iters"`
	RegretEpsilon float64 `yaml:"regret_epsilon"`
	MaxNumber     float64 `yaml:"max_number"`
}

// Validate checks the CFR+ tuning constants are safe to run with.
func (c CFRConfig) Validate() error {
	if c.Iters <= 0 {
		return fmt.Errorf("config: iters must be > 0")
	}
	if c.SkipIters < 0 || c.SkipIters >= c.Iters {
		return fmt.Errorf("config: skip_iters must be in [0, iters)")
	}
	if c.RegretEpsilon <= 0 {
		return fmt.Errorf("config: regret_epsilon must be > 0")
	}
	if c.MaxNumber <= c.RegretEpsilon {
		return fmt.Errorf("config: max_number must exceed regret_epsilon")
	}
	return nil
}

// ToLookaheadParams adapts the loaded constants to lookahead.Params.
func (c CFRConfig) ToLookaheadParams() lookahead.Params {
	return lookahead.Params{
		CFRIters:      c.Iters,
		CFRSkipIters:  c.SkipIters,
		RegretEpsilon: c.RegretEpsilon,
		MaxNumber:     c.MaxNumber,
	}
}

// RolloutConfig tunes the reference oracle used when no trained next-street
// box is configured.
type RolloutConfig struct {
	Samples int    `yaml:"samples"`
	Seed    uint64 `yaml:"seed"`
}

func (r RolloutConfig) Validate() error {
	if r.Samples <= 0 {
		return fmt.Errorf("config: rollout samples must be > 0")
	}
	return nil
}

// Parameters is the full configuration for one resolve run.
type Parameters struct {
	Game    GameConfig    `yaml:"game"`
	Tree    TreeConfig    `yaml:"tree"`
	CFR     CFRConfig     `yaml:"cfr"`
	Rollout RolloutConfig `yaml:"rollout"`
}

// Validate checks every sub-section.
func (p Parameters) Validate() error {
	if err := p.Game.Validate(); err != nil {
		return err
	}
	if err := p.Tree.Validate(); err != nil {
		return err
	}
	if err := p.CFR.Validate(); err != nil {
		return err
	}
	if err := p.Rollout.Validate(); err != nil {
		return err
	}
	return nil
}

// Default returns a Leduc-scale configuration suitable for smoke tests.
func Default() Parameters {
	return Parameters{
		Game: GameConfig{
			CardCount:      6,
			HandCardCount:  1,
			BoardCardCount: []int{0, 1},
			StreetsCount:   2,
			PlayersCount:   2,
		},
		Tree: TreeConfig{
			BetSizes: []float64{1.0},
			Ante:     1,
			Stack:    10,
		},
		CFR: CFRConfig{
			Iters:         1000,
			SkipIters:     500,
			RegretEpsilon: 1e-9,
			MaxNumber:     1e15,
		},
		Rollout: RolloutConfig{Samples: 100, Seed: 1},
	}
}

// DefaultTexas returns a full 52-card Texas Hold'em configuration, the base
// cmd/resolve loads on top of when no --config file is given.
func DefaultTexas() Parameters {
	return Parameters{
		Game: GameConfig{
			CardCount:      52,
			HandCardCount:  2,
			BoardCardCount: []int{0, 3, 4, 5},
			StreetsCount:   4,
			PlayersCount:   2,
		},
		Tree: TreeConfig{
			BetSizes: []float64{0.5, 1.0},
			Ante:     0,
			Stack:    100,
		},
		CFR: CFRConfig{
			Iters:         1000,
			SkipIters:     500,
			RegretEpsilon: 1e-9,
			MaxNumber:     1e15,
		},
		Rollout: RolloutConfig{Samples: 300, Seed: 1},
	}
}

// LoadOnto reads and validates a YAML configuration file, using base as the
// starting point instead of the Leduc-scale Default().
func LoadOnto(path string, base Parameters) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Parameters{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := base.Validate(); err != nil {
		return Parameters{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return base, nil
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Parameters, error) {
	return LoadOnto(path, Default())
}
