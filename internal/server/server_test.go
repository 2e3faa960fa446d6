package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hailam/boardroom/internal/ai"
	"github.com/hailam/boardroom/internal/auth"
	"github.com/hailam/boardroom/internal/bus"
	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/orchestrator"
	"github.com/hailam/boardroom/internal/store"
)

type testEnv struct {
	srv *httptest.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	st, err := store.Open("", log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	b := bus.New(64)
	t.Cleanup(b.Shutdown)

	reg := ai.DefaultRoster(log, "")
	orch := orchestrator.New(st, b, reg, log)
	require.NoError(t, orch.SeedAIPlayers())

	s := New(log, orch, st, b, auth.New("test-secret", time.Hour), reg)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) signup(t *testing.T, name string) string {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, status)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) createGame(t *testing.T, token, kind, opponent string, cfg game.Config) *game.Row {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/"+kind+"/", token, map[string]any{
		"config": cfg, "opponent": opponent,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var row game.Row
	require.NoError(t, json.Unmarshal(raw, &row))
	return &row
}

func errCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Code
}

func TestSignupLoginMe(t *testing.T) {
	e := newEnv(t)
	token := e.signup(t, "alice")

	status, raw := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "alice", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request", errCode(t, raw))

	status, _ = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"name": "alice", "password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, status)

	status, raw = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"name": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errCode(t, raw))

	status, raw = e.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var p game.Player
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, "alice", p.Name)
	assert.Empty(t, p.PasswordHash)
}

func TestCreateRequiresAuth(t *testing.T) {
	e := newEnv(t)
	status, raw := e.do(t, http.MethodPost, "/tictactoe/", "", map[string]any{"opponent": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errCode(t, raw))
}

func TestUnknownKindIs404(t *testing.T) {
	e := newEnv(t)
	status, raw := e.do(t, http.MethodGet, "/checkers/", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errCode(t, raw))
}

func TestGameLifecycle(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	e.signup(t, "bob")
	eve := e.signup(t, "eve")

	row := e.createGame(t, alice, "tictactoe", "bob", game.Config{})
	assert.Equal(t, "X", row.Turn)

	status, raw := e.do(t, http.MethodPost, "/tictactoe/"+row.ID+"/move", alice,
		map[string]int{"position": 4})
	require.Equal(t, http.StatusOK, status)
	var after game.Row
	require.NoError(t, json.Unmarshal(raw, &after))
	assert.Equal(t, "O", after.Turn)

	// Alice moving out of turn.
	status, raw = e.do(t, http.MethodPost, "/tictactoe/"+row.ID+"/move", alice,
		map[string]int{"position": 0})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "not_your_turn", errCode(t, raw))

	// Eve is not seated.
	status, _ = e.do(t, http.MethodPost, "/tictactoe/"+row.ID+"/move", eve,
		map[string]int{"position": 0})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = e.do(t, http.MethodGet, "/tictactoe/", "", nil)
	require.Equal(t, http.StatusOK, status)
	var rows []game.Row
	require.NoError(t, json.Unmarshal(raw, &rows))
	assert.Len(t, rows, 1)

	status, raw = e.do(t, http.MethodDelete, "/tictactoe/"+row.ID, eve, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", errCode(t, raw))

	status, _ = e.do(t, http.MethodDelete, "/tictactoe/"+row.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, raw = e.do(t, http.MethodGet, "/tictactoe/"+row.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errCode(t, raw))
}

func TestIllegalMoveIs422(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	e.signup(t, "bob")
	row := e.createGame(t, alice, "tictactoe", "bob", game.Config{})

	status, raw := e.do(t, http.MethodPost, "/tictactoe/"+row.ID+"/move", alice,
		map[string]int{"position": 42})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "illegal_move", errCode(t, raw))
}

func TestChessResponseCarriesEvaluation(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	e.signup(t, "bob")
	row := e.createGame(t, alice, "chess", "bob", game.Config{Variant: "standard"})

	status, raw := e.do(t, http.MethodGet, "/chess/"+row.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var resp struct {
		Evaluation *int `json:"evaluation"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.NotNil(t, resp.Evaluation)
	assert.Equal(t, 0, *resp.Evaluation)

	status, raw = e.do(t, http.MethodPost, "/chess/"+row.ID+"/move", alice,
		map[string]string{"move_uci": "e2e4"})
	require.Equal(t, http.StatusOK, status)
	resp.Evaluation = nil
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.NotNil(t, resp.Evaluation)
}

func TestChessUndo(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	e.signup(t, "bob")
	row := e.createGame(t, alice, "chess", "bob", game.Config{Variant: "standard"})

	status, _ := e.do(t, http.MethodPost, "/chess/"+row.ID+"/move", alice,
		map[string]string{"move_uci": "e2e4"})
	require.Equal(t, http.StatusOK, status)

	status, raw := e.do(t, http.MethodPost, "/chess/"+row.ID+"/undo", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var after game.Row
	require.NoError(t, json.Unmarshal(raw, &after))
	assert.Equal(t, "white", after.Turn)
	assert.Empty(t, after.Config.Moves)
}

func TestCreateAgainstAIMismatchRejected(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	status, raw := e.do(t, http.MethodPost, "/tictactoe/", alice, map[string]any{
		"config": game.Config{}, "opponent": ai.ChessEasy,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request", errCode(t, raw))
}

func TestCreateAgainstAICascades(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	row := e.createGame(t, alice, "connect4", ai.Connect4Easy, game.Config{})

	status, raw := e.do(t, http.MethodPost, "/connect4/"+row.ID+"/move", alice,
		map[string]int{"column": 3})
	require.Equal(t, http.StatusOK, status)
	var after game.Row
	require.NoError(t, json.Unmarshal(raw, &after))
	// The AI reply lands before the response, turn comes back to Red.
	assert.Equal(t, "Red", after.Turn)
}

func TestVisualizeAzul(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	e.signup(t, "bob")
	row := e.createGame(t, alice, "azul", "bob", game.Config{Seed: 7})

	status, raw := e.do(t, http.MethodPost, "/azul/"+row.ID+"/visualize_ai", "", nil)
	require.Equal(t, http.StatusOK, status)
	var diag struct {
		Policy []json.RawMessage `json:"policy"`
		Legal  int               `json:"legal_moves"`
	}
	require.NoError(t, json.Unmarshal(raw, &diag))
	assert.NotEmpty(t, diag.Policy)
	assert.Equal(t, len(diag.Policy), diag.Legal)
}

func TestWebSocketStreamsMoves(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	e.signup(t, "bob")
	row := e.createGame(t, alice, "tictactoe", "bob", game.Config{})

	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/tictactoe/" + row.ID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	status, _ := e.do(t, http.MethodPost, "/tictactoe/"+row.ID+"/move", alice,
		map[string]int{"position": 0})
	require.Equal(t, http.StatusOK, status)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev bus.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, bus.TypeMove, ev.Type)
	assert.Equal(t, "X", ev.By)
	assert.Equal(t, game.InProgress, ev.Status)
}

func TestWebSocketUnknownGame(t *testing.T) {
	e := newEnv(t)
	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/tictactoe/nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
