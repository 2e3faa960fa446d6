package santorini

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/boardroom/internal/game"
)

func place(t *testing.T, s *State, r, c int) {
	t.Helper()
	status, err := s.Apply(Move{MoveType: PlaceWorker, MoveTo: Coord{r, c}})
	require.NoError(t, err)
	require.Equal(t, game.InProgress, status)
}

// placed returns a state with both players' workers in the corners area.
func placed(t *testing.T) *State {
	t.Helper()
	s := &State{Turn: P1}
	place(t, s, 0, 0)
	place(t, s, 4, 4)
	place(t, s, 0, 1)
	place(t, s, 4, 3)
	return s
}

func TestPlacementAlternates(t *testing.T) {
	s := &State{Turn: P1}
	place(t, s, 2, 2)
	assert.Equal(t, P2, s.Turn)
	assert.Equal(t, P1, s.Board[2][2].Worker)

	place(t, s, 3, 3)
	assert.Equal(t, P1, s.Turn)
	assert.True(t, s.InPlacement(P1))
	assert.True(t, s.InPlacement(P2))
}

func TestPlacementOnOccupiedCellRejected(t *testing.T) {
	s := &State{Turn: P1}
	place(t, s, 2, 2)
	_, err := s.Apply(Move{MoveType: PlaceWorker, MoveTo: Coord{2, 2}})
	assert.True(t, game.IsIllegal(err))
}

func TestMoveAndBuild(t *testing.T) {
	s := placed(t)
	require.Equal(t, P1, s.Turn)

	start := Coord{0, 0}
	build := Coord{0, 0}
	status, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 0}, BuildAt: &build})
	require.NoError(t, err)
	assert.Equal(t, game.InProgress, status)
	assert.Equal(t, "", s.Board[0][0].Worker)
	assert.Equal(t, P1, s.Board[1][0].Worker)
	assert.Equal(t, 1, s.Board[0][0].Level)
	assert.Equal(t, P2, s.Turn)
}

func TestCannotClimbTwoLevels(t *testing.T) {
	s := placed(t)
	s.Board[1][0].Level = 2

	start := Coord{0, 0}
	build := Coord{2, 0}
	_, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 0}, BuildAt: &build})
	assert.True(t, game.IsIllegal(err))
}

func TestCannotMoveOntoDomeOrWorker(t *testing.T) {
	s := placed(t)
	s.Board[1][0].Level = DomeLevel

	start := Coord{0, 0}
	build := Coord{0, 0}
	_, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 0}, BuildAt: &build})
	assert.True(t, game.IsIllegal(err))

	_, err = s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{0, 1}, BuildAt: &build})
	assert.True(t, game.IsIllegal(err))
}

func TestSteppingOntoLevelThreeWins(t *testing.T) {
	s := placed(t)
	s.Board[0][0].Level = 2
	s.Board[1][0].Level = 3

	start := Coord{0, 0}
	status, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, game.WonBy(P1), status)
}

func TestWinningMoveRequiresNoBuild(t *testing.T) {
	s := placed(t)
	s.Board[0][0].Level = 2
	s.Board[1][0].Level = 3

	start := Coord{0, 0}
	build := Coord{2, 0}
	_, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 0}, BuildAt: &build})
	assert.True(t, game.IsIllegal(err))
}

func TestBuildOnVacatedCellAllowed(t *testing.T) {
	s := placed(t)
	start := Coord{0, 0}
	build := Coord{0, 0}
	status, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 1}, BuildAt: &build})
	require.NoError(t, err)
	assert.Equal(t, game.InProgress, status)
	assert.Equal(t, 1, s.Board[0][0].Level)
}

func TestTrappedOpponentLoses(t *testing.T) {
	// P2's workers are boxed into the corner by domes.
	s := &State{Turn: P1}
	place(t, s, 0, 0)
	place(t, s, 4, 4)
	place(t, s, 0, 1)
	place(t, s, 4, 3)

	for _, c := range []Coord{{3, 2}, {3, 3}, {3, 4}, {4, 2}} {
		s.Board[c[0]][c[1]].Level = DomeLevel
	}

	start := Coord{0, 0}
	build := Coord{0, 0}
	status, err := s.Apply(Move{MoveType: MoveBuild, WorkerStart: &start, MoveTo: Coord{1, 0}, BuildAt: &build})
	require.NoError(t, err)
	assert.Equal(t, game.WonBy(P1), status)
}

func TestEngineRoundTrip(t *testing.T) {
	e := Engine{}
	raw, first, err := e.Initial(game.Config{})
	require.NoError(t, err)
	assert.Equal(t, P1, first)

	moves, err := e.LegalMoves(raw)
	require.NoError(t, err)
	assert.Len(t, moves, Size*Size)

	next, turn, status, err := e.Apply(raw, moves[0])
	require.NoError(t, err)
	assert.Equal(t, P2, turn)
	assert.Equal(t, game.InProgress, status)

	var s State
	require.NoError(t, json.Unmarshal(next, &s))
	assert.Equal(t, P1, s.Board[0][0].Worker)
}
