// Package azulnet is the Azul policy/value predictor: a dense MLP over the
// flat observation vector with a softmax policy head over the action space
// and a tanh value head.
package azulnet

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/hailam/boardroom/internal/rules/azul"
)

// negInf masks illegal logits before the softmax.
const negInf = float32(-1e9)

// Network holds the weights. Layout: a shared hidden layer with ReLU, then
// a policy head and a scalar value head.
type Network struct {
	ObsSize    int
	HiddenSize int
	ActionSize int

	HiddenW []float32 // ObsSize x HiddenSize, row-major by input
	HiddenB []float32 // HiddenSize
	PolicyW []float32 // HiddenSize x ActionSize
	PolicyB []float32 // ActionSize
	ValueW  []float32 // HiddenSize
	ValueB  float32
}

// New allocates a zero network of the given shape.
func New(obs, hidden, actions int) *Network {
	return &Network{
		ObsSize:    obs,
		HiddenSize: hidden,
		ActionSize: actions,
		HiddenW:    make([]float32, obs*hidden),
		HiddenB:    make([]float32, hidden),
		PolicyW:    make([]float32, hidden*actions),
		PolicyB:    make([]float32, actions),
		ValueW:     make([]float32, hidden),
	}
}

// NewRandom allocates a network with small random weights, for tests and
// for play without a trained model.
func NewRandom(obs, hidden, actions int, seed int64) *Network {
	n := New(obs, hidden, actions)
	rng := rand.New(rand.NewSource(seed))
	scale := float32(1 / math.Sqrt(float64(obs)))
	for i := range n.HiddenW {
		n.HiddenW[i] = (rng.Float32()*2 - 1) * scale
	}
	scale = float32(1 / math.Sqrt(float64(hidden)))
	for i := range n.PolicyW {
		n.PolicyW[i] = (rng.Float32()*2 - 1) * scale
	}
	for i := range n.ValueW {
		n.ValueW[i] = (rng.Float32()*2 - 1) * scale
	}
	return n
}

// DefaultShape is the network shape for the standard two-player table.
func DefaultShape() (obs, hidden, actions int) {
	return azul.ObsLen(2, 5), 256, azul.ActionSpace(5)
}

// Predict runs the forward pass. The returned policy is masked logits over
// the flat action space (illegal entries pushed to -1e9); value is the
// tanh-squashed score estimate in [-1, 1].
func (n *Network) Predict(obs, mask []float32) ([]float32, float32, error) {
	if len(obs) != n.ObsSize {
		return nil, 0, fmt.Errorf("azulnet: observation length %d, want %d", len(obs), n.ObsSize)
	}
	if len(mask) != n.ActionSize {
		return nil, 0, fmt.Errorf("azulnet: mask length %d, want %d", len(mask), n.ActionSize)
	}

	hidden := make([]float32, n.HiddenSize)
	copy(hidden, n.HiddenB)
	for i, x := range obs {
		if x == 0 {
			continue
		}
		row := n.HiddenW[i*n.HiddenSize : (i+1)*n.HiddenSize]
		for j, w := range row {
			hidden[j] += x * w
		}
	}
	for j, h := range hidden {
		if h < 0 {
			hidden[j] = 0
		}
	}

	policy := make([]float32, n.ActionSize)
	copy(policy, n.PolicyB)
	for j, h := range hidden {
		if h == 0 {
			continue
		}
		row := n.PolicyW[j*n.ActionSize : (j+1)*n.ActionSize]
		for a, w := range row {
			policy[a] += h * w
		}
	}
	for a := range policy {
		if mask[a] == 0 {
			policy[a] = negInf
		}
	}

	value := n.ValueB
	for j, h := range hidden {
		value += h * n.ValueW[j]
	}
	return policy, float32(math.Tanh(float64(value))), nil
}

// ActionProb pairs a move with its softmax probability, for diagnostics.
type ActionProb struct {
	Move        azul.Move `json:"move"`
	Index       int       `json:"index"`
	Probability float64   `json:"probability"`
}

// Diagnostics is the payload behind the visualize endpoint: the policy
// distribution over legal moves and the value estimate for a state.
type Diagnostics struct {
	Value   float64      `json:"value"`
	Policy  []ActionProb `json:"policy"`
	ObsLen  int          `json:"obs_len"`
	Legal   int          `json:"legal_moves"`
}

// Explain evaluates a state and returns the legal-move policy sorted by
// probability, highest first.
func (n *Network) Explain(s *azul.State) (*Diagnostics, error) {
	obs := s.Observe()
	mask := s.Mask()
	policy, value, err := n.Predict(obs, mask)
	if err != nil {
		return nil, err
	}

	moves := s.LegalMoves()
	maxLogit := negInf
	for _, m := range moves {
		if l := policy[azul.ActionIndex(m)]; l > maxLogit {
			maxLogit = l
		}
	}
	total := 0.0
	probs := make([]float64, len(moves))
	for i, m := range moves {
		probs[i] = math.Exp(float64(policy[azul.ActionIndex(m)] - maxLogit))
		total += probs[i]
	}

	d := &Diagnostics{Value: float64(value), ObsLen: len(obs), Legal: len(moves)}
	for i, m := range moves {
		p := 0.0
		if total > 0 {
			p = probs[i] / total
		}
		d.Policy = append(d.Policy, ActionProb{Move: m, Index: azul.ActionIndex(m), Probability: p})
	}
	sort.Slice(d.Policy, func(i, j int) bool {
		return d.Policy[i].Probability > d.Policy[j].Probability
	})
	return d, nil
}
