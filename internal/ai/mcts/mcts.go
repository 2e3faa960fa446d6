// Package mcts implements the PUCT tree search used by the Azul neural
// opponents. A tree is single-threaded and owned by one game; the
// predictor supplies masked policy priors and value estimates.
package mcts

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hailam/boardroom/internal/rules/azul"
)

// Predictor scores an observation: policy logits over the flat action
// space and a value estimate in [-1, 1].
type Predictor interface {
	Predict(obs, mask []float32) (policy []float32, value float32, err error)
}

// Config tunes the search.
type Config struct {
	Simulations int
	Cpuct       float64
	Temperature float64

	// SinglePlayer optimizes the agent's own score: opponent nodes are
	// sampled from the policy instead of maximized, and values backpropagate
	// unflipped.
	SinglePlayer bool
	Agent        int // agent seat index in single-player mode

	// Root Dirichlet exploration noise; disabled when Epsilon is 0.
	DirichletAlpha float64
	Epsilon        float64

	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Simulations <= 0 {
		c.Simulations = 200
	}
	if c.Cpuct == 0 {
		c.Cpuct = 1.5
	}
	if c.Seed == 0 {
		c.Seed = rand.Int63()
	}
	return c
}

type node struct {
	state    *azul.State
	parent   *node
	prior    float64
	n        int
	w        float64
	player   int
	children map[int]*node // action index -> child
}

func (nd *node) q() float64 {
	if nd.n == 0 {
		return 0
	}
	return nd.w / float64(nd.n)
}

func (nd *node) expanded() bool { return nd.children != nil }

func newNode(s *azul.State, parent *node, prior float64) *node {
	return &node{state: s, parent: parent, prior: prior, player: s.Turn}
}

// Tree is a reusable search tree rooted at the current game state.
type Tree struct {
	cfg  Config
	pred Predictor
	root *node
	rng  *rand.Rand
}

func NewTree(state *azul.State, pred Predictor, cfg Config) *Tree {
	cfg = cfg.withDefaults()
	return &Tree{
		cfg:  cfg,
		pred: pred,
		root: newNode(state, nil, 1),
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Search runs the configured number of simulations and returns the chosen
// flat action index.
func (t *Tree) Search() (int, error) {
	if t.root.state.Terminated {
		return 0, fmt.Errorf("mcts: search on terminal state")
	}
	for i := 0; i < t.cfg.Simulations; i++ {
		if err := t.simulate(); err != nil {
			return 0, err
		}
	}
	return t.selectRootAction()
}

func (t *Tree) simulate() error {
	nd := t.root
	for nd.expanded() && !nd.state.Terminated {
		next, ok := t.selectChild(nd)
		if !ok {
			break
		}
		nd = next
	}

	var value float64
	if nd.state.Terminated {
		value = t.terminalValue(nd)
	} else {
		v, err := t.expand(nd)
		if err != nil {
			return err
		}
		value = v
	}
	t.backprop(nd, value)
	return nil
}

// selectChild picks the next node on the descent path: PUCT at agent
// nodes, policy sampling at opponent nodes in single-player mode.
func (t *Tree) selectChild(nd *node) (*node, bool) {
	if len(nd.children) == 0 {
		return nil, false
	}
	if t.cfg.SinglePlayer && nd.player != t.cfg.Agent {
		return t.sampleChild(nd), true
	}

	sqrtN := math.Sqrt(float64(nd.n))
	var best *node
	bestAction := -1
	bestScore := math.Inf(-1)
	for a, child := range nd.children {
		u := child.q() + t.cfg.Cpuct*child.prior*sqrtN/float64(1+child.n)
		if u > bestScore || (u == bestScore && a < bestAction) {
			best, bestAction, bestScore = child, a, u
		}
	}
	t.materialize(nd, bestAction, best)
	return best, true
}

// sampleChild draws a child proportional to the stored priors, treating
// the opponent as part of the environment.
func (t *Tree) sampleChild(nd *node) *node {
	total := 0.0
	for _, c := range nd.children {
		total += c.prior
	}
	pick := t.rng.Float64() * total
	var lastA int
	var last *node
	for a, c := range nd.children {
		lastA, last = a, c
		pick -= c.prior
		if pick <= 0 {
			break
		}
	}
	t.materialize(nd, lastA, last)
	return last
}

// materialize lazily applies the child's action: states are only computed
// for children the search actually visits.
func (t *Tree) materialize(parent *node, action int, child *node) {
	if child.state != nil {
		return
	}
	s := parent.state.Clone()
	if _, err := s.Apply(azul.ActionAt(action)); err != nil {
		// The action came from the legal-move list; a failure here means
		// the parent state was mutated underneath us.
		panic(fmt.Sprintf("mcts: cached action %d became illegal: %v", action, err))
	}
	child.state = s
	child.player = s.Turn
}

// expand evaluates a leaf with the predictor, creates one child per legal
// move with masked-softmax priors, and returns the value estimate.
func (t *Tree) expand(nd *node) (float64, error) {
	moves := nd.state.LegalMoves()
	if len(moves) == 0 {
		return t.terminalValue(nd), nil
	}
	policy, value, err := t.pred.Predict(nd.state.Observe(), nd.state.Mask())
	if err != nil {
		return 0, err
	}
	priors := maskedSoftmax(policy, moves)

	nd.children = make(map[int]*node, len(moves))
	for i, m := range moves {
		a := azul.ActionIndex(m)
		nd.children[a] = &node{parent: nd, prior: priors[i], player: -1}
	}
	if nd == t.root && t.cfg.Epsilon > 0 {
		t.addRootNoise()
	}
	return float64(value), nil
}

// maskedSoftmax normalizes the policy over the legal moves, falling back
// to uniform when the masked distribution is degenerate.
func maskedSoftmax(policy []float32, moves []azul.Move) []float64 {
	priors := make([]float64, len(moves))
	maxLogit := math.Inf(-1)
	for _, m := range moves {
		a := azul.ActionIndex(m)
		if a < len(policy) && float64(policy[a]) > maxLogit {
			maxLogit = float64(policy[a])
		}
	}
	total := 0.0
	for i, m := range moves {
		a := azul.ActionIndex(m)
		if a < len(policy) {
			priors[i] = math.Exp(float64(policy[a]) - maxLogit)
		}
		total += priors[i]
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		uniform := 1.0 / float64(len(moves))
		for i := range priors {
			priors[i] = uniform
		}
		return priors
	}
	for i := range priors {
		priors[i] /= total
	}
	return priors
}

// addRootNoise blends Dirichlet noise into the root priors.
func (t *Tree) addRootNoise() {
	noise := t.dirichlet(len(t.root.children))
	i := 0
	for _, child := range t.root.children {
		child.prior = (1-t.cfg.Epsilon)*child.prior + t.cfg.Epsilon*noise[i]
		i++
	}
}

func (t *Tree) dirichlet(n int) []float64 {
	out := make([]float64, n)
	total := 0.0
	for i := range out {
		out[i] = t.gamma(t.cfg.DirichletAlpha)
		total += out[i]
	}
	if total == 0 {
		for i := range out {
			out[i] = 1 / float64(n)
		}
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// gamma samples Gamma(alpha, 1) by Marsaglia-Tsang, with the alpha<1 boost.
func (t *Tree) gamma(alpha float64) float64 {
	if alpha <= 0 {
		return 0
	}
	if alpha < 1 {
		u := t.rng.Float64()
		return t.gamma(alpha+1) * math.Pow(u, 1/alpha)
	}
	d := alpha - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := t.rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := t.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// terminalValue is the exact value at a finished game: zero-sum win/loss/
// draw for the leaf's mover, or the agent's clipped normalized score in
// single-player mode.
func (t *Tree) terminalValue(nd *node) float64 {
	if t.cfg.SinglePlayer {
		v := float64(nd.state.Players[t.cfg.Agent].Score) / 100
		return math.Max(-1, math.Min(1, v))
	}
	winners := nd.state.Winners()
	if len(winners) != 1 {
		return 0
	}
	if winners[0] == nd.player {
		return 1
	}
	return -1
}

// backprop updates visit counts and values along the path to the root.
func (t *Tree) backprop(leaf *node, value float64) {
	for nd := leaf; nd != nil; nd = nd.parent {
		nd.n++
		v := value
		if !t.cfg.SinglePlayer && nd.player != leaf.player {
			v = -value
		}
		nd.w += v
	}
}

// selectRootAction applies the temperature policy to the root visit
// counts: argmax at T=0, visit^(1/T) sampling otherwise.
func (t *Tree) selectRootAction() (int, error) {
	if len(t.root.children) == 0 {
		return 0, fmt.Errorf("mcts: root was never expanded")
	}
	if t.cfg.Temperature <= 0 {
		bestA, bestN := -1, -1
		for a, c := range t.root.children {
			if c.n > bestN || (c.n == bestN && a < bestA) {
				bestA, bestN = a, c.n
			}
		}
		return bestA, nil
	}

	inv := 1 / t.cfg.Temperature
	actions := make([]int, 0, len(t.root.children))
	weights := make([]float64, 0, len(t.root.children))
	total := 0.0
	for a, c := range t.root.children {
		w := math.Pow(float64(c.n), inv)
		if math.IsInf(w, 1) || w > 1e300 {
			w = 1e300
		}
		actions = append(actions, a)
		weights = append(weights, w)
		total += w
	}
	if total <= 0 || math.IsInf(total, 1) {
		return actions[t.rng.Intn(len(actions))], nil
	}
	pick := t.rng.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return actions[i], nil
		}
	}
	return actions[len(actions)-1], nil
}

// RootVisits exposes the per-action visit distribution at the root, for
// diagnostics.
func (t *Tree) RootVisits() map[int]int {
	out := make(map[int]int, len(t.root.children))
	for a, c := range t.root.children {
		out[a] = c.n
	}
	return out
}

// Advance moves the root after an action was played in the real game.
// The new root's state is overwritten with the environment's state; when
// any cached child action is no longer legal there (a diverging refill),
// the subtree is discarded and the root reset fresh.
func (t *Tree) Advance(action int, newState *azul.State) {
	child, ok := t.root.children[action]
	if !ok || child == nil {
		t.root = newNode(newState, nil, 1)
		return
	}
	child.parent = nil
	child.state = newState
	child.player = newState.Turn
	t.root = child

	for a := range child.children {
		if !newState.Legal(azul.ActionAt(a)) {
			t.root = newNode(newState, nil, 1)
			return
		}
	}
}
