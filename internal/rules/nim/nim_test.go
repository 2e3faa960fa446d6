package nim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/boardroom/internal/game"
)

func TestDefaultPiles(t *testing.T) {
	raw, first, err := Engine{}.Initial(game.Config{})
	require.NoError(t, err)
	assert.Equal(t, P1, first)

	var s State
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, []int{1, 3, 5, 7}, s.Board)
}

func TestConfiguredPiles(t *testing.T) {
	raw, _, err := Engine{}.Initial(game.Config{Piles: []int{2, 4}})
	require.NoError(t, err)
	var s State
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, []int{2, 4}, s.Board)

	_, _, err = Engine{}.Initial(game.Config{Piles: []int{3, -1}})
	assert.ErrorIs(t, err, game.ErrBadRequest)
}

func TestLegalMovesEnumeration(t *testing.T) {
	s := State{Board: []int{2, 3}, Turn: P1}
	assert.Len(t, s.LegalMoves(), 5)
}

func TestTakingLastObjectLoses(t *testing.T) {
	s := State{Board: []int{1}, Turn: P1}
	status, err := s.Apply(Move{PileIndex: 0, Count: 1})
	require.NoError(t, err)
	assert.Equal(t, game.WonBy(P2), status)
}

func TestTurnAlternates(t *testing.T) {
	s := State{Board: []int{3, 3}, Turn: P1}
	status, err := s.Apply(Move{PileIndex: 0, Count: 2})
	require.NoError(t, err)
	assert.Equal(t, game.InProgress, status)
	assert.Equal(t, P2, s.Turn)
	assert.Equal(t, []int{1, 3}, s.Board)
}

func TestIllegalRemovals(t *testing.T) {
	s := State{Board: []int{2, 0}, Turn: P1}

	_, err := s.Apply(Move{PileIndex: 2, Count: 1})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{PileIndex: 1, Count: 1})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{PileIndex: 0, Count: 3})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{PileIndex: 0, Count: 0})
	assert.True(t, game.IsIllegal(err))
}

func TestEmptyBoardRejectsMoves(t *testing.T) {
	s := State{Board: []int{0, 0}, Turn: P1}
	_, err := s.Apply(Move{PileIndex: 0, Count: 1})
	assert.True(t, game.IsIllegal(err))
}

func TestEngineRoundTrip(t *testing.T) {
	e := Engine{}
	raw, _, err := e.Initial(game.Config{Piles: []int{1, 2}})
	require.NoError(t, err)

	moves, err := e.LegalMoves(raw)
	require.NoError(t, err)
	assert.Len(t, moves, 3)

	next, turn, status, err := e.Apply(raw, json.RawMessage(`{"pile_index":1,"count":2}`))
	require.NoError(t, err)
	assert.Equal(t, P2, turn)
	assert.Equal(t, game.InProgress, status)

	var s State
	require.NoError(t, json.Unmarshal(next, &s))
	assert.Equal(t, []int{1, 0}, s.Board)
}
