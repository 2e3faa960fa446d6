package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/boardroom/internal/ai/azulnet"
	"github.com/hailam/boardroom/internal/rules/azul"
)

func testNet() *azulnet.Network {
	obs, _, actions := azulnet.DefaultShape()
	return azulnet.NewRandom(obs, 32, actions, 5)
}

func TestSearchReturnsLegalAction(t *testing.T) {
	s := azul.NewState(2, 0, 1)
	tree := NewTree(s.Clone(), testNet(), Config{Simulations: 50, Seed: 2})

	action, err := tree.Search()
	require.NoError(t, err)
	assert.True(t, s.Legal(azul.ActionAt(action)))
}

func TestSearchSinglePlayerMode(t *testing.T) {
	s := azul.NewState(2, 0, 3)
	cfg := Config{Simulations: 50, SinglePlayer: true, Agent: s.Turn, Seed: 4}
	tree := NewTree(s.Clone(), testNet(), cfg)

	action, err := tree.Search()
	require.NoError(t, err)
	assert.True(t, s.Legal(azul.ActionAt(action)))
	assert.Equal(t, cfg.Simulations, tree.root.n)
}

func TestSearchAccumulatesVisits(t *testing.T) {
	s := azul.NewState(2, 0, 5)
	tree := NewTree(s.Clone(), testNet(), Config{Simulations: 60, Seed: 6})
	_, err := tree.Search()
	require.NoError(t, err)

	visits := tree.RootVisits()
	total := 0
	for _, n := range visits {
		total += n
	}
	// The first simulation only expands the root.
	assert.Equal(t, 59, total)
	assert.Len(t, visits, len(s.LegalMoves()))
}

func TestTemperatureSamplingStaysLegal(t *testing.T) {
	s := azul.NewState(2, 0, 7)
	tree := NewTree(s.Clone(), testNet(), Config{Simulations: 40, Temperature: 1, Seed: 8})
	action, err := tree.Search()
	require.NoError(t, err)
	assert.True(t, s.Legal(azul.ActionAt(action)))
}

func TestRootNoiseKeepsPriorsNormalized(t *testing.T) {
	s := azul.NewState(2, 0, 9)
	tree := NewTree(s.Clone(), testNet(), Config{
		Simulations: 30, Seed: 10, DirichletAlpha: 0.3, Epsilon: 0.25,
	})
	_, err := tree.Search()
	require.NoError(t, err)

	total := 0.0
	for _, c := range tree.root.children {
		assert.GreaterOrEqual(t, c.prior, 0.0)
		total += c.prior
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestAdvanceReusesSubtree(t *testing.T) {
	s := azul.NewState(2, 0, 11)
	tree := NewTree(s.Clone(), testNet(), Config{Simulations: 80, Seed: 12})
	action, err := tree.Search()
	require.NoError(t, err)

	child := tree.root.children[action]
	require.NotNil(t, child)
	visits := child.n

	next := s.Clone()
	_, err = next.Apply(azul.ActionAt(action))
	require.NoError(t, err)

	tree.Advance(action, next)
	assert.Same(t, child, tree.root, "the played child becomes the root")
	assert.Equal(t, visits, tree.root.n, "accumulated visits survive")
	assert.Same(t, next, tree.root.state, "root resyncs to the environment state")
	assert.Nil(t, tree.root.parent)

	_, err = tree.Search()
	assert.NoError(t, err)
}

func TestAdvanceResetsOnUnknownAction(t *testing.T) {
	s := azul.NewState(2, 0, 13)
	tree := NewTree(s.Clone(), testNet(), Config{Simulations: 30, Seed: 14})
	_, err := tree.Search()
	require.NoError(t, err)

	next := s.Clone()
	moves := next.LegalMoves()
	_, err = next.Apply(moves[len(moves)-1])
	require.NoError(t, err)

	bogus := azul.ActionSpace(len(s.Factories)) - 1
	tree.Advance(bogus, next)
	assert.False(t, tree.root.expanded(), "unknown action rebuilds a fresh root")
	assert.Same(t, next, tree.root.state)
}

func TestAdvanceResetsOnRefillDivergence(t *testing.T) {
	s := azul.NewState(2, 0, 15)
	tree := NewTree(s.Clone(), testNet(), Config{Simulations: 120, Seed: 16})
	action, err := tree.Search()
	require.NoError(t, err)

	// Force a second level of expansion under the played child so the
	// promoted root carries cached grandchildren.
	for i := 0; i < 200 && !tree.root.children[action].expanded(); i++ {
		require.NoError(t, tree.simulate())
	}
	child := tree.root.children[action]
	if !child.expanded() {
		t.Skip("child never expanded under this seed")
	}

	// A divergent environment: every display suddenly holds a different
	// layout, so at least one cached action goes illegal.
	diverged := azul.NewState(2, 0, 999)
	for i := range diverged.Factories {
		for c := 0; c < azul.Colors; c++ {
			diverged.Bag[c] += diverged.Factories[i][c]
			diverged.Factories[i][c] = 0
		}
	}
	diverged.Bag[azul.Blue]--
	diverged.Factories[0][azul.Blue] = 1

	tree.Advance(action, diverged)
	assert.False(t, tree.root.expanded(), "divergence resets the subtree")
	assert.Same(t, diverged, tree.root.state)
}

func TestTerminalValueZeroSum(t *testing.T) {
	s := azul.NewState(2, 0, 17)
	s.Terminated = true
	s.Players[0].Score = 30
	s.Players[1].Score = 10
	s.Turn = 0

	tree := NewTree(s, testNet(), Config{})
	assert.Equal(t, 1.0, tree.terminalValue(tree.root))

	s.Turn = 1
	tree = NewTree(s, testNet(), Config{})
	assert.Equal(t, -1.0, tree.terminalValue(tree.root))

	s.Players[1].Score = 30
	tree = NewTree(s, testNet(), Config{})
	assert.Equal(t, 0.0, tree.terminalValue(tree.root))
}

func TestTerminalValueSinglePlayerClips(t *testing.T) {
	s := azul.NewState(2, 0, 19)
	s.Terminated = true
	s.Players[0].Score = 250

	tree := NewTree(s, testNet(), Config{SinglePlayer: true, Agent: 0})
	assert.Equal(t, 1.0, tree.terminalValue(tree.root))

	s.Players[0].Score = 50
	tree = NewTree(s, testNet(), Config{SinglePlayer: true, Agent: 0})
	assert.InDelta(t, 0.5, tree.terminalValue(tree.root), 1e-9)
}

func TestMaskedSoftmaxUniformFallback(t *testing.T) {
	s := azul.NewState(2, 0, 21)
	moves := s.LegalMoves()

	policy := make([]float32, azul.ActionSpace(len(s.Factories)))
	for i := range policy {
		policy[i] = float32(-1e9)
	}
	priors := maskedSoftmax(policy, moves)
	for _, p := range priors {
		assert.InDelta(t, 1.0/float64(len(moves)), p, 1e-9)
	}
}
