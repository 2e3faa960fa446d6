package connect4

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/boardroom/internal/game"
)

func TestPiecesStack(t *testing.T) {
	s := State{Turn: Red}
	require.Equal(t, Rows-1, s.Drop(3, Red))
	require.Equal(t, Rows-2, s.Drop(3, Blue))
	assert.Equal(t, Red, s.At(Rows-1, 3))
	assert.Equal(t, Blue, s.At(Rows-2, 3))
}

func TestVerticalWin(t *testing.T) {
	s := State{Turn: Red}
	var status game.Status
	var err error
	for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
		status, err = s.Apply(Move{Column: col})
		require.NoError(t, err)
	}
	assert.Equal(t, game.WonBy(Red), status)
	assert.True(t, s.Wins(Red))
}

func TestHorizontalWin(t *testing.T) {
	s := State{Turn: Red}
	var status game.Status
	var err error
	for _, col := range []int{0, 0, 1, 1, 2, 2, 3} {
		status, err = s.Apply(Move{Column: col})
		require.NoError(t, err)
	}
	assert.Equal(t, game.WonBy(Red), status)
}

func TestDiagonalWin(t *testing.T) {
	// Red on the rising diagonal through columns 0..3.
	s := State{Turn: Red}
	for _, col := range []int{0, 1, 1, 2, 2, 3, 2, 3, 3, 6, 3} {
		_, err := s.Apply(Move{Column: col})
		require.NoError(t, err)
	}
	assert.True(t, s.Wins(Red))
}

func TestFullColumnRejected(t *testing.T) {
	s := State{Turn: Red}
	for i := 0; i < Rows; i++ {
		_, err := s.Apply(Move{Column: 0})
		require.NoError(t, err)
	}
	assert.False(t, s.ColumnOpen(0))
	_, err := s.Apply(Move{Column: 0})
	assert.True(t, game.IsIllegal(err))
}

func TestOutOfRangeRejected(t *testing.T) {
	s := State{Turn: Red}
	_, err := s.Apply(Move{Column: -1})
	assert.True(t, game.IsIllegal(err))
	_, err = s.Apply(Move{Column: Cols})
	assert.True(t, game.IsIllegal(err))
}

func TestDecidedGameRejectsMoves(t *testing.T) {
	s := State{Turn: Red}
	for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
		_, err := s.Apply(Move{Column: col})
		require.NoError(t, err)
	}
	assert.Empty(t, s.LegalMoves())
	_, err := s.Apply(Move{Column: 2})
	assert.True(t, game.IsIllegal(err))
}

func TestMoveHistoryRecorded(t *testing.T) {
	s := State{Turn: Red}
	for _, col := range []int{3, 2, 4} {
		_, err := s.Apply(Move{Column: col})
		require.NoError(t, err)
	}
	assert.Equal(t, []int{3, 2, 4}, s.Moves)
}

func TestEngineRoundTrip(t *testing.T) {
	e := Engine{}
	raw, first, err := e.Initial(game.Config{})
	require.NoError(t, err)
	assert.Equal(t, Red, first)

	moves, err := e.LegalMoves(raw)
	require.NoError(t, err)
	assert.Len(t, moves, Cols)

	next, turn, status, err := e.Apply(raw, json.RawMessage(`{"column":3}`))
	require.NoError(t, err)
	assert.Equal(t, Blue, turn)
	assert.Equal(t, game.InProgress, status)

	var s State
	require.NoError(t, json.Unmarshal(next, &s))
	assert.Equal(t, Red, s.At(Rows-1, 3))
}
