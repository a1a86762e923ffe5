package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultParametersAreValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestGameConfigRejectsMismatchedBoardCounts(t *testing.T) {
	g := Default().Game
	g.BoardCardCount = []int{0}
	require.Error(t, g.Validate())
}

func TestCFRConfigRejectsSkipIritersAtOrAboveIters(t *testing.T) {
	c := Default().CFR
	c.SkipIters = c.Iters
	require.Error(t, c.Validate())
}

func TestLoadParsesYAMLAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	content := []byte(`
game:
  card_count: 6
  hand_card_count: 1
  board_card_count: [0, 1]
  streets_count: 2
  players_count: 2
tree:
  bet_sizes: [1.0]
  ante: 1
  stack: 10
cfr:
  iters: 200
  skip_iters: 50
  regret_epsilon: 1e-9
  max_number: 1e15
rollout:
  samples: 40
  seed: 7
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	params, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 200, params.CFR.Iters)
	require.Equal(t, 40, params.Rollout.Samples)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cfr:\n  iters: 0\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultTexasIsValid(t *testing.T) {
	params := DefaultTexas()
	require.NoError(t, params.Validate())
	require.Equal(t, 52, params.Game.CardCount)
	require.Equal(t, 2, params.Game.HandCardCount)
}

func TestLoadOntoOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	content := []byte(`
cfr:
  iters: 50
  skip_iters: 10
  regret_epsilon: 1e-9
  max_number: 1e15
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	params, err := LoadOnto(path, DefaultTexas())
	require.NoError(t, err)
	require.Equal(t, 50, params.CFR.Iters)
	require.Equal(t, 52, params.Game.CardCount, "unspecified fields should keep the base Texas defaults")
}

func TestLoadOntoRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cfr:\n  iters: 0\n"), 0o644))
	_, err := LoadOnto(path, DefaultTexas())
	require.Error(t, err)
}
