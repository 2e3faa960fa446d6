package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hailam/boardroom/internal/game"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func row(kind game.Kind, id string) *game.Row {
	return &game.Row{
		ID:     id,
		Kind:   kind,
		State:  json.RawMessage(`{"board":[]}`),
		Turn:   "X",
		Status: game.InProgress,
		Seats:  map[string]string{"X": "alice"},
	}
}

func TestGameRoundTrip(t *testing.T) {
	s := open(t)
	r := row(game.TicTacToe, "g1")
	require.NoError(t, s.SaveGame(r))

	got, err := s.GetGame(game.TicTacToe, "g1")
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestGetGameNotFound(t *testing.T) {
	s := open(t)
	_, err := s.GetGame(game.Chess, "missing")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestListGamesFiltersByKind(t *testing.T) {
	s := open(t)
	require.NoError(t, s.SaveGame(row(game.Nim, "a")))
	require.NoError(t, s.SaveGame(row(game.Nim, "b")))
	require.NoError(t, s.SaveGame(row(game.Chess, "c")))

	rows, err := s.ListGames(game.Nim)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, game.Nim, r.Kind)
	}
}

func TestDeleteGame(t *testing.T) {
	s := open(t)
	require.NoError(t, s.SaveGame(row(game.Azul, "g")))
	require.NoError(t, s.DeleteGame(game.Azul, "g"))

	_, err := s.GetGame(game.Azul, "g")
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.ErrorIs(t, s.DeleteGame(game.Azul, "g"), game.ErrNotFound)
}

func TestPlayerNameIndex(t *testing.T) {
	s := open(t)
	p := &game.Player{ID: "p1", Name: "alice", Kind: game.Human}
	require.NoError(t, s.SavePlayer(p))

	got, err := s.GetPlayerByName("alice")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = s.GetPlayerByName("bob")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestReset(t *testing.T) {
	s := open(t)
	require.NoError(t, s.SaveGame(row(game.Wythoff, "g")))
	require.NoError(t, s.Reset())

	rows, err := s.ListGames(game.Wythoff)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
