// Package orchestrator owns the turn loop: it is the single mutator of
// game rows. Every move request is validated against the row's turn
// pointer, applied through the rule engine, persisted, published, and
// followed by the AI cascade while AI participants hold the turn.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/ai"
	"github.com/hailam/boardroom/internal/bus"
	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/azul"
	"github.com/hailam/boardroom/internal/rules/chess"
	"github.com/hailam/boardroom/internal/rules/connect4"
	"github.com/hailam/boardroom/internal/rules/nim"
	"github.com/hailam/boardroom/internal/rules/santorini"
	"github.com/hailam/boardroom/internal/rules/tictactoe"
	"github.com/hailam/boardroom/internal/rules/wythoff"
	"github.com/hailam/boardroom/internal/store"
)

// maxCascade bounds consecutive AI moves per request; Azul round ends can
// hand the turn straight back to the same AI seat.
const maxCascade = 256

// Engines maps every supported kind to its rule engine.
func Engines() map[game.Kind]game.Engine {
	return map[game.Kind]game.Engine{
		game.TicTacToe: tictactoe.Engine{},
		game.Connect4:  connect4.Engine{},
		game.Chess:     chess.Engine{},
		game.Azul:      azul.Engine{},
		game.Nim:       nim.Engine{},
		game.Wythoff:   wythoff.Engine{},
		game.Santorini: santorini.Engine{},
	}
}

// Orchestrator coordinates store, bus, engines and the AI registry.
type Orchestrator struct {
	store   *store.Store
	bus     *bus.Bus
	reg     *ai.Registry
	log     *zap.Logger
	engines map[game.Kind]game.Engine
	locks   sync.Map // game id -> *sync.Mutex
}

func New(st *store.Store, b *bus.Bus, reg *ai.Registry, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:   st,
		bus:     b,
		reg:     reg,
		log:     log,
		engines: Engines(),
	}
}

// SeedAIPlayers ensures every roster entry has a stored player identity
// bound to its game kind. Existing identities are kept.
func (o *Orchestrator) SeedAIPlayers() error {
	for name, kind := range ai.KindOf {
		if _, err := o.store.GetPlayerByName(name); err == nil {
			continue
		}
		p := &game.Player{ID: uuid.NewString(), Name: name, Kind: game.AI, GameKind: kind}
		if err := o.store.SavePlayer(p); err != nil {
			return fmt.Errorf("seed ai player %q: %w", name, err)
		}
		o.log.Info("seeded ai player", zap.String("name", name), zap.String("kind", string(kind)))
	}
	return nil
}

func (o *Orchestrator) engine(kind game.Kind) (game.Engine, error) {
	e, ok := o.engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown game kind %q", game.ErrBadRequest, kind)
	}
	return e, nil
}

func (o *Orchestrator) lock(id string) func() {
	mu, _ := o.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Create starts a new game. The creator takes the first seat, the
// opponent the second; the AI cascade runs immediately in case an AI
// participant holds the opening move.
func (o *Orchestrator) Create(ctx context.Context, kind game.Kind, cfg game.Config, creatorID, opponentID string) (*game.Row, error) {
	eng, err := o.engine(kind)
	if err != nil {
		return nil, err
	}
	state, turn, err := eng.Initial(cfg)
	if err != nil {
		return nil, err
	}

	tags := game.SeatTags[kind]
	row := &game.Row{
		ID:        uuid.NewString(),
		Kind:      kind,
		State:     state,
		Turn:      turn,
		Status:    game.InProgress,
		Config:    cfg,
		Seats:     map[string]string{tags[0]: creatorID, tags[1]: opponentID},
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.SaveGame(row); err != nil {
		return nil, err
	}
	o.publish(row, bus.Event{Type: bus.TypeCreate, State: row.State, Status: row.Status})

	unlock := o.lock(row.ID)
	defer unlock()
	o.cascade(ctx, eng, row)
	return row, nil
}

// Get loads a row by kind and id.
func (o *Orchestrator) Get(kind game.Kind, id string) (*game.Row, error) {
	if _, err := o.engine(kind); err != nil {
		return nil, err
	}
	return o.store.GetGame(kind, id)
}

// List returns the kind's rows still in progress.
func (o *Orchestrator) List(kind game.Kind) ([]*game.Row, error) {
	if _, err := o.engine(kind); err != nil {
		return nil, err
	}
	rows, err := o.store.ListGames(kind)
	if err != nil {
		return nil, err
	}
	open := rows[:0]
	for _, r := range rows {
		if r.Status == game.InProgress {
			open = append(open, r)
		}
	}
	return open, nil
}

// Delete removes a row. Only participants may delete their game.
func (o *Orchestrator) Delete(kind game.Kind, id, playerID string) error {
	unlock := o.lock(id)
	defer unlock()

	row, err := o.Get(kind, id)
	if err != nil {
		return err
	}
	if !participates(row, playerID) {
		return game.ErrForbidden
	}
	return o.store.DeleteGame(kind, id)
}

// Move runs one human move plus the AI cascade and returns the
// post-cascade row.
func (o *Orchestrator) Move(ctx context.Context, kind game.Kind, id, playerID string, mv game.Move) (*game.Row, error) {
	eng, err := o.engine(kind)
	if err != nil {
		return nil, err
	}

	unlock := o.lock(id)
	defer unlock()

	row, err := o.store.GetGame(kind, id)
	if err != nil {
		return nil, err
	}
	if row.Status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", game.ErrGameOver, row.Status)
	}
	if row.Seats[row.Turn] != playerID {
		return nil, fmt.Errorf("%w: %s moves next", game.ErrNotYourTurn, row.Turn)
	}

	if err := o.apply(eng, row, mv); err != nil {
		return nil, err
	}
	o.cascade(ctx, eng, row)
	return row, nil
}

// apply runs one move through the engine, persists the row and publishes
// the move event. The event carries the seat that moved.
func (o *Orchestrator) apply(eng game.Engine, row *game.Row, mv game.Move) error {
	by := row.Turn
	state, turn, status, err := eng.Apply(row.State, mv)
	if err != nil {
		return err
	}
	row.State = state
	row.Turn = turn
	row.Status = status
	if err := o.store.SaveGame(row); err != nil {
		return err
	}
	o.publish(row, bus.Event{Type: bus.TypeMove, By: by, Move: mv, State: row.State, Status: row.Status})
	return nil
}

// cascade plays AI turns until a human holds the turn, the game ends, the
// context expires, or an AI fails. An AI failure leaves the turn pointer
// untouched for outside intervention.
func (o *Orchestrator) cascade(ctx context.Context, eng game.Engine, row *game.Row) {
	for i := 0; i < maxCascade && row.Status == game.InProgress; i++ {
		if ctx.Err() != nil {
			return
		}
		player, err := o.store.GetPlayer(row.Seats[row.Turn])
		if err != nil || player.Kind != game.AI {
			return
		}
		strategy, ok := o.reg.Lookup(player.Name)
		if !ok {
			o.log.Error("ai player has no registered strategy",
				zap.String("game", row.ID), zap.String("name", player.Name))
			return
		}
		mv, err := strategy.SelectMove(row.State)
		if err != nil {
			o.log.Error("ai strategy failed, leaving turn pointer",
				zap.String("game", row.ID), zap.String("name", player.Name), zap.Error(err))
			return
		}
		if err := o.apply(eng, row, mv); err != nil {
			o.log.Error("ai move rejected by engine",
				zap.String("game", row.ID), zap.String("name", player.Name), zap.Error(err))
			return
		}
	}
}

// Undo rewinds a chess game: one ply in human-vs-human games, two in
// human-vs-AI so the player's move and the AI reply vanish together.
func (o *Orchestrator) Undo(ctx context.Context, id, playerID string) (*game.Row, error) {
	unlock := o.lock(id)
	defer unlock()

	row, err := o.store.GetGame(game.Chess, id)
	if err != nil {
		return nil, err
	}
	if !participates(row, playerID) {
		return nil, game.ErrForbidden
	}

	plies := 1
	if o.hasAISeat(row) {
		plies = 2
	}
	state, turn, err := chess.Undo(row.State, plies)
	if err != nil {
		return nil, err
	}
	row.State = state
	row.Turn = turn
	row.Status, err = o.chessStatus(state)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveGame(row); err != nil {
		return nil, err
	}
	o.publish(row, bus.Event{Type: bus.TypeUndo, By: playerID, State: row.State, Status: row.Status})
	return row, nil
}

func (o *Orchestrator) chessStatus(raw game.State) (game.Status, error) {
	var s chess.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	pos, err := chess.ParseFEN(s.BoardFEN)
	if err != nil {
		return "", err
	}
	pos.Chess960 = s.Config.Chess960
	return chess.StatusOf(pos, s.Config)
}

func (o *Orchestrator) hasAISeat(row *game.Row) bool {
	for _, pid := range row.Seats {
		if p, err := o.store.GetPlayer(pid); err == nil && p.Kind == game.AI {
			return true
		}
	}
	return false
}

func (o *Orchestrator) publish(row *game.Row, ev bus.Event) {
	o.bus.Publish(bus.Topic(row.Kind, row.ID), ev)
}

func participates(row *game.Row, playerID string) bool {
	for _, pid := range row.Seats {
		if pid == playerID {
			return true
		}
	}
	return false
}
