package ai

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/ai/azulnet"
	"github.com/hailam/boardroom/internal/ai/mcts"
	"github.com/hailam/boardroom/internal/ai/minimax"
	"github.com/hailam/boardroom/internal/ai/negamax"
	"github.com/hailam/boardroom/internal/ai/solver"
	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/azul"
	"github.com/hailam/boardroom/internal/rules/connect4"
	"github.com/hailam/boardroom/internal/rules/nim"
	"github.com/hailam/boardroom/internal/rules/santorini"
	"github.com/hailam/boardroom/internal/rules/tictactoe"
)

// Roster names. AI participants are created with these as display names;
// the orchestrator resolves moves through them.
const (
	TicTacToeRandom  = "TicTacToe Random"
	Connect4Random   = "Connect4 Random"
	Connect4Easy     = "Connect4 Easy"
	Connect4Medium   = "Connect4 Medium"
	Connect4Hard     = "Connect4 Hard"
	SantoriniRandom  = "Santorini Random"
	NimRandom        = "Nim Random"
	NimIntermediate  = "Nim Intermediate"
	NimExpert        = "Nim Expert"
	WythoffExpert    = "Wythoff Expert"
	ChessEasy        = "Chess Easy"
	ChessMedium      = "Chess Medium"
	ChessHard        = "Chess Hard"
	AzulRandom       = "Azul Random"
	AzulRandomPlusAI = "Azul Random Plus"
	AzulHeuristicAI  = "Azul Heuristic"
	AzulZero         = "AzulZero"
)

// KindOf maps a roster name to the game kind it plays.
var KindOf = map[string]game.Kind{
	TicTacToeRandom:  game.TicTacToe,
	Connect4Random:   game.Connect4,
	Connect4Easy:     game.Connect4,
	Connect4Medium:   game.Connect4,
	Connect4Hard:     game.Connect4,
	SantoriniRandom:  game.Santorini,
	NimRandom:        game.Nim,
	NimIntermediate:  game.Nim,
	NimExpert:        game.Nim,
	WythoffExpert:    game.Wythoff,
	ChessEasy:        game.Chess,
	ChessMedium:      game.Chess,
	ChessHard:        game.Chess,
	AzulRandom:       game.Azul,
	AzulRandomPlusAI: game.Azul,
	AzulHeuristicAI:  game.Azul,
	AzulZero:         game.Azul,
}

// DefaultRoster builds the registry of built-in opponents. The AzulZero
// entry loads trained weights from azulModelPath; when the file is missing
// the entry falls back to a randomly initialized network so the roster
// stays complete.
func DefaultRoster(log *zap.Logger, azulModelPath string) *Registry {
	r := NewRegistry()
	r.Populate(log, map[string]Builder{
		TicTacToeRandom: func() (Strategy, error) { return NewRandom(tictactoe.Engine{}, 0), nil },
		Connect4Random:  func() (Strategy, error) { return NewRandom(connect4.Engine{}, 0), nil },
		Connect4Easy:    func() (Strategy, error) { return negamax.New(2, 0), nil },
		Connect4Medium:  func() (Strategy, error) { return negamax.New(4, 0), nil },
		Connect4Hard:    func() (Strategy, error) { return negamax.New(6, 0), nil },
		SantoriniRandom: func() (Strategy, error) { return NewRandom(santorini.Engine{}, 0), nil },
		NimRandom:       func() (Strategy, error) { return NewRandom(nim.Engine{}, 0), nil },
		NimIntermediate: func() (Strategy, error) { return NewNimBlunderer(0), nil },
		NimExpert:       func() (Strategy, error) { return solver.Nim{}, nil },
		WythoffExpert:   func() (Strategy, error) { return solver.Wythoff{}, nil },
		ChessEasy:       func() (Strategy, error) { return minimax.New(1, 0), nil },
		ChessMedium:     func() (Strategy, error) { return minimax.New(2, 0), nil },
		ChessHard:       func() (Strategy, error) { return minimax.New(3, 0), nil },
		AzulRandom:      func() (Strategy, error) { return NewRandom(azul.Engine{}, 0), nil },
		AzulRandomPlusAI: func() (Strategy, error) {
			return NewAzulRandomPlus(0), nil
		},
		AzulHeuristicAI: func() (Strategy, error) {
			return NewAzulHeuristic(0), nil
		},
		AzulZero: func() (Strategy, error) {
			net, err := loadAzulNet(log, azulModelPath)
			if err != nil {
				return nil, err
			}
			return NewAzulMCTS(net, mcts.Config{Simulations: 160, SinglePlayer: true}), nil
		},
	})
	return r
}

func loadAzulNet(log *zap.Logger, path string) (*azulnet.Network, error) {
	if path != "" {
		net, err := azulnet.LoadWeights(path)
		if err == nil {
			return net, nil
		}
		log.Warn("azul model failed to load, using untrained weights",
			zap.String("path", path), zap.Error(err))
	}
	obs, hidden, actions := azulnet.DefaultShape()
	return azulnet.NewRandom(obs, hidden, actions, rand.Int63()), nil
}

// AzulMCTS wraps the PUCT search as a roster strategy. Each call builds a
// fresh tree for the request's state; the mover's seat becomes the agent.
type AzulMCTS struct {
	net *azulnet.Network
	cfg mcts.Config
	mu  sync.Mutex
}

func NewAzulMCTS(net *azulnet.Network, cfg mcts.Config) *AzulMCTS {
	return &AzulMCTS{net: net, cfg: cfg}
}

func (a *AzulMCTS) SelectMove(state game.State) (game.Move, error) {
	s, err := azul.Decode(state)
	if err != nil {
		return nil, err
	}
	if s.Terminated {
		return nil, game.ErrGameOver
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	cfg := a.cfg
	cfg.Agent = s.Turn
	tree := mcts.NewTree(s.Clone(), a.net, cfg)
	action, err := tree.Search()
	if err != nil {
		return nil, fmt.Errorf("azul mcts: %w", err)
	}
	return json.Marshal(azul.ActionAt(action))
}

// Net exposes the predictor for the visualize endpoint.
func (a *AzulMCTS) Net() *azulnet.Network { return a.net }

// NimBlunderer plays the optimal Nim move most of the time but blunders
// randomly on roughly a third of its turns.
type NimBlunderer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewNimBlunderer(seed int64) *NimBlunderer {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &NimBlunderer{rng: rand.New(rand.NewSource(seed))}
}

func (n *NimBlunderer) SelectMove(state game.State) (game.Move, error) {
	var s nim.State
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return nil, game.ErrGameOver
	}

	n.mu.Lock()
	blunder := n.rng.Float64() < 0.3
	pick := moves[n.rng.Intn(len(moves))]
	n.mu.Unlock()
	if blunder {
		return json.Marshal(pick)
	}

	mv, ok := solver.NimMove(s.Board)
	if !ok {
		return nil, game.ErrGameOver
	}
	return json.Marshal(mv)
}
