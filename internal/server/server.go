// Package server exposes the platform over HTTP and WebSocket: game CRUD
// and moves per kind, chess undo, the Azul predictor diagnostics, account
// endpoints and per-game event streams.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hailam/boardroom/internal/ai"
	"github.com/hailam/boardroom/internal/auth"
	"github.com/hailam/boardroom/internal/bus"
	"github.com/hailam/boardroom/internal/game"
	"github.com/hailam/boardroom/internal/orchestrator"
	"github.com/hailam/boardroom/internal/store"
)

// moveDeadline bounds one request's engine work plus AI cascade.
const moveDeadline = 30 * time.Second

// Server wires the HTTP surface to the orchestrator.
type Server struct {
	log      *zap.Logger
	orch     *orchestrator.Orchestrator
	store    *store.Store
	bus      *bus.Bus
	auth     *auth.Service
	reg      *ai.Registry
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

func New(log *zap.Logger, orch *orchestrator.Orchestrator, st *store.Store, b *bus.Bus, authSvc *auth.Service, reg *ai.Registry) *Server {
	s := &Server{
		log:   log,
		orch:  orch,
		store: st,
		bus:   b,
		auth:  authSvc,
		reg:   reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("POST /auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /auth/me", s.authed(s.handleMe))

	s.mux.HandleFunc("GET /{kind}/", s.handleList)
	s.mux.HandleFunc("POST /{kind}/", s.authed(s.handleCreate))
	s.mux.HandleFunc("GET /{kind}/{id}", s.handleGet)
	s.mux.HandleFunc("POST /{kind}/{id}/move", s.authed(s.handleMove))
	s.mux.HandleFunc("DELETE /{kind}/{id}", s.authed(s.handleDelete))

	s.mux.HandleFunc("POST /chess/{id}/undo", s.authed(s.handleUndo))
	s.mux.HandleFunc("POST /azul/{id}/visualize_ai", s.handleVisualize)

	s.mux.HandleFunc("GET /ws/{kind}/{id}", s.handleWS)
}

type ctxKey int

const playerKey ctxKey = iota

// authed verifies the bearer token and stores the player id in the
// request context.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.writeError(w, game.ErrUnauthorized)
			return
		}
		subject, err := s.auth.VerifyToken(token, time.Now())
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), playerKey, subject)))
	}
}

func playerID(r *http.Request) string {
	id, _ := r.Context().Value(playerKey).(string)
	return id
}

// pathKind validates the {kind} wildcard.
func pathKind(r *http.Request) (game.Kind, error) {
	kind := game.Kind(r.PathValue("kind"))
	if !kind.Valid() {
		return "", errors.Join(game.ErrNotFound, errors.New("unknown game kind "+string(kind)))
	}
	return kind, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encoding failed", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, status := "internal", http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound):
		code, status = "not_found", http.StatusNotFound
	case errors.Is(err, game.ErrUnauthorized):
		code, status = "unauthorized", http.StatusUnauthorized
	case errors.Is(err, game.ErrForbidden):
		code, status = "forbidden", http.StatusForbidden
	case errors.Is(err, game.ErrNotYourTurn):
		code, status = "not_your_turn", http.StatusForbidden
	case errors.Is(err, game.ErrGameOver):
		code, status = "game_over", http.StatusConflict
	case game.IsIllegal(err):
		code, status = "illegal_move", http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrBadRequest):
		code, status = "bad_request", http.StatusBadRequest
	default:
		s.log.Error("internal error", zap.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"code": code, "error": err.Error()})
}
