package ai

import (
	"encoding/json"
	"math/rand"
	"sync"

	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/azul"
)

// AzulRandomPlus plays a random legal move but avoids dumping tiles on the
// floor whenever a pattern-line placement exists.
type AzulRandomPlus struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewAzulRandomPlus(seed int64) *AzulRandomPlus {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &AzulRandomPlus{rng: rand.New(rand.NewSource(seed))}
}

func (a *AzulRandomPlus) SelectMove(state game.State) (game.Move, error) {
	s, err := azul.Decode(state)
	if err != nil {
		return nil, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return nil, game.ErrGameOver
	}
	var placements []azul.Move
	for _, m := range moves {
		if m.Dest != azul.FloorDest {
			placements = append(placements, m)
		}
	}
	if len(placements) > 0 {
		moves = placements
	}
	a.mu.Lock()
	pick := moves[a.rng.Intn(len(moves))]
	a.mu.Unlock()
	return json.Marshal(pick)
}

// AzulHeuristic greedily scores each legal move by how well the taken
// batch fits its pattern line: filled slots score, completing a line
// scores extra, overflow and floor dumps cost.
type AzulHeuristic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewAzulHeuristic(seed int64) *AzulHeuristic {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &AzulHeuristic{rng: rand.New(rand.NewSource(seed))}
}

func (a *AzulHeuristic) SelectMove(state game.State) (game.Move, error) {
	s, err := azul.Decode(state)
	if err != nil {
		return nil, err
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return nil, game.ErrGameOver
	}

	board := &s.Players[s.Turn]
	best := moves[:0:0]
	bestScore := 0
	for _, m := range moves {
		score := a.score(s, board, m)
		if len(best) == 0 || score > bestScore {
			best = append(best[:0], m)
			bestScore = score
		} else if score == bestScore {
			best = append(best, m)
		}
	}

	a.mu.Lock()
	pick := best[a.rng.Intn(len(best))]
	a.mu.Unlock()
	return json.Marshal(pick)
}

func (a *AzulHeuristic) score(s *azul.State, b *azul.PlayerBoard, m azul.Move) int {
	take := 0
	if m.Source == s.CenterSource() {
		take = s.Center[m.Color]
	} else {
		take = s.Factories[m.Source][m.Color]
	}
	if m.Dest == azul.FloorDest {
		return -2 * take
	}
	line := b.Lines[m.Dest]
	empty := 0
	for _, v := range line {
		if v == azul.Empty {
			empty++
		}
	}
	fill := take
	if fill > empty {
		fill = empty
	}
	overflow := take - fill
	score := 2 * fill
	if fill == empty {
		score += m.Dest + 1 // line completes this round
	}
	return score - 2*overflow
}
