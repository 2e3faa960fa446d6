// Package ai holds the strategy registry and the roster of built-in
// computer opponents. A strategy is looked up by the AI participant's
// display name and picks one move for the current state.
package ai

import (
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/game"
)

// Strategy selects a move for the mover of the given state. The state is
// the engine's persisted document for the strategy's game kind.
type Strategy interface {
	SelectMove(state game.State) (game.Move, error)
}

// Builder constructs a strategy. Builders run once at startup; expensive
// resources such as model weights are loaded here and cached in the
// returned strategy.
type Builder func() (Strategy, error)

// Registry is the process-wide name to strategy map.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register binds a name, replacing any previous binding.
func (r *Registry) Register(name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = s
}

// Lookup resolves a strategy by display name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// Names lists the registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Populate runs each builder and registers the result. A builder failure
// is logged and skipped so one broken entry cannot take down the roster.
func (r *Registry) Populate(log *zap.Logger, entries map[string]Builder) {
	for name, build := range entries {
		s, err := build()
		if err != nil {
			log.Warn("ai strategy failed to load, skipping",
				zap.String("name", name), zap.Error(err))
			continue
		}
		r.Register(name, s)
		log.Info("ai strategy registered", zap.String("name", name))
	}
}

// Random plays a uniformly random legal move. It works for any game kind
// through the engine's legal-move enumeration.
type Random struct {
	Engine game.Engine

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom seeds the strategy; seed 0 draws from the global source.
func NewRandom(e game.Engine, seed int64) *Random {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Random{Engine: e, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) SelectMove(state game.State) (game.Move, error) {
	moves, err := r.Engine.LegalMoves(state)
	if err != nil {
		return nil, err
	}
	if len(moves) == 0 {
		return nil, game.ErrGameOver
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return moves[r.rng.Intn(len(moves))], nil
}
