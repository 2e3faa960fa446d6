package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hailam/boardroom/internal/ai"
	"github.com/hailam/boardroom/internal/ai/minimax"
	"github.com/hailam/boardroom/internal/auth"
	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/rules/azul"
	"github.com/hailam/boardroom/internal/rules/chess"
)

// gameResponse decorates a row with the chess extras the clients expect.
type gameResponse struct {
	*game.Row
	Evaluation *int `json:"evaluation,omitempty"`
}

// respond renders a row, attaching the white-perspective centipawn
// evaluation for chess games.
func (s *Server) respond(w http.ResponseWriter, status int, row *game.Row) {
	resp := gameResponse{Row: row}
	if row.Kind == game.Chess {
		if eval, err := chessEvaluation(row.State); err == nil {
			resp.Evaluation = &eval
		}
	}
	s.writeJSON(w, status, resp)
}

func chessEvaluation(raw game.State) (int, error) {
	var st chess.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return 0, err
	}
	pos, err := chess.ParseFEN(st.BoardFEN)
	if err != nil {
		return 0, err
	}
	eval := minimax.Evaluate(pos)
	if pos.Turn == chess.Black {
		eval = -eval
	}
	return eval, nil
}

type createRequest struct {
	Config   game.Config `json:"config"`
	Opponent string      `json:"opponent"` // player or roster name
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", game.ErrBadRequest, err))
		return
	}
	opponent, err := s.store.GetPlayerByName(req.Opponent)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: opponent %q", game.ErrBadRequest, req.Opponent))
		return
	}
	if opponent.Kind == game.AI && opponent.GameKind != kind {
		s.writeError(w, fmt.Errorf("%w: %q does not play %s", game.ErrBadRequest, req.Opponent, kind))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), moveDeadline)
	defer cancel()
	row, err := s.orch.Create(ctx, kind, req.Config, playerID(r), opponent.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, row)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := s.orch.List(kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rows == nil {
		rows = []*game.Row{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	row, err := s.orch.Get(kind, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, row)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var mv json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&mv); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", game.ErrBadRequest, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), moveDeadline)
	defer cancel()
	row, err := s.orch.Move(ctx, kind, r.PathValue("id"), playerID(r), mv)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, row)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.orch.Delete(kind, r.PathValue("id"), playerID(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), moveDeadline)
	defer cancel()
	row, err := s.orch.Undo(ctx, r.PathValue("id"), playerID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, row)
}

// handleVisualize runs the AzulZero predictor on the stored game state
// and returns its policy and value diagnostics.
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	row, err := s.orch.Get(game.Azul, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	strategy, ok := s.reg.Lookup(ai.AzulZero)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: azul predictor is not loaded", game.ErrNotFound))
		return
	}
	zero, ok := strategy.(*ai.AzulMCTS)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: azul predictor has no diagnostics", game.ErrInternal))
		return
	}
	st, err := azul.Decode(row.State)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", game.ErrInternal, err))
		return
	}
	diag, err := zero.Net().Explain(st)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", game.ErrInternal, err))
		return
	}
	s.writeJSON(w, http.StatusOK, diag)
}

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string       `json:"token"`
	Player *game.Player `json:"player"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Password == "" {
		s.writeError(w, fmt.Errorf("%w: name and password required", game.ErrBadRequest))
		return
	}
	if _, err := s.store.GetPlayerByName(req.Name); err == nil {
		s.writeError(w, fmt.Errorf("%w: name %q is taken", game.ErrBadRequest, req.Name))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p := &game.Player{ID: uuid.NewString(), Name: req.Name, Kind: game.Human, PasswordHash: hash}
	if err := s.store.SavePlayer(p); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authResponse{
		Token:  s.auth.IssueToken(p.ID, time.Now()),
		Player: sanitize(p),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", game.ErrBadRequest, err))
		return
	}
	p, err := s.store.GetPlayerByName(req.Name)
	if err != nil || p.Kind != game.Human || !auth.CheckPassword(p.PasswordHash, req.Password) {
		s.writeError(w, fmt.Errorf("%w: bad credentials", game.ErrUnauthorized))
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{
		Token:  s.auth.IssueToken(p.ID, time.Now()),
		Player: sanitize(p),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlayer(playerID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sanitize(p))
}

// sanitize strips the credential hash from API responses.
func sanitize(p *game.Player) *game.Player {
	cp := *p
	cp.PasswordHash = ""
	return &cp
}
