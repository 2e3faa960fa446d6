package wythoff

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
	assert.Equal(t, [2]int{7, 10}, s.Board)
}

func TestConfigValidation(t *testing.T) {
	_, _, err := Engine{}.Initial(game.Config{Piles: []int{1, 2, 3}})
	assert.ErrorIs(t, err, game.ErrBadRequest)

	_, _, err = Engine{}.Initial(game.Config{Piles: []int{-1, 2}})
	assert.ErrorIs(t, err, game.ErrBadRequest)
}

func TestLegalMovesEnumeration(t *testing.T) {
	s := State{Board: [2]int{2, 3}, Turn: P1}
	// 2 + 3 standard removals plus 2 diagonal removals.
	assert.Len(t, s.LegalMoves(), 7)
}

func TestDiagonalMove(t *testing.T) {
	s := State{Board: [2]int{4, 6}, Turn: P1}
	status, err := s.Apply(Move{Type: Diagonal, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, game.InProgress, status)
	assert.Equal(t, [2]int{1, 3}, s.Board)
	assert.Equal(t, P2, s.Turn)
}

func TestTakingLastObjectWins(t *testing.T) {
	s := State{Board: [2]int{2, 2}, Turn: P2}
	status, err := s.Apply(Move{Type: Diagonal, Count: 2})
	require.NoError(t, err)
	assert.Equal(t, game.WonBy(P2), status)
}

func TestIllegalMoves(t *testing.T) {
	s := State{Board: [2]int{2, 5}, Turn: P1}

	_, err := s.Apply(Move{Type: Standard, PileIndex: 2, Count: 1})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{Type: Standard, PileIndex: 0, Count: 3})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{Type: Diagonal, Count: 3})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{Type: "swap", Count: 1})
	assert.True(t, game.IsIllegal(err))
}

func TestEngineRoundTrip(t *testing.T) {
	e := Engine{}
	raw, _, err := e.Initial(game.Config{Piles: []int{1, 2}})
	require.NoError(t, err)

	moves, err := e.LegalMoves(raw)
	require.NoError(t, err)
	assert.Len(t, moves, 4)

	next, turn, status, err := e.Apply(raw, json.RawMessage(`{"type":"standard","pile_index":1,"count":1}`))
	require.NoError(t, err)
	assert.Equal(t, P2, turn)
	assert.Equal(t, game.InProgress, status)

	var s State
	require.NoError(t, json.Unmarshal(next, &s))
	assert.Equal(t, [2]int{1, 1}, s.Board)
}
