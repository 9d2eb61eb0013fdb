// internal/httpserver/server.go
//
// HTTP wiring for the Gin Rummy backend.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts, JSON).
//   - Room endpoints: create, fetch, join, leave, ready.
//   - Game endpoints: start, action, state.
//   - Player identification via bearer token or X-Player-ID header.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ramcd86/cosmic-games/engine"
	"github.com/ramcd86/cosmic-games/internal/auth"
	"github.com/ramcd86/cosmic-games/internal/game"
	"github.com/ramcd86/cosmic-games/internal/models"
)

// ApiResponse is the uniform envelope for every endpoint.
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Server bundles the router and the room manager.
type Server struct {
	r       *chi.Mux
	manager *game.Manager
	log     *logrus.Entry
}

// New constructs a Server, installs middleware, and registers routes.
func New(manager *game.Manager, log *logrus.Logger) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		manager: manager,
		log:     log.WithField("component", "http"),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(15 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, ApiResponse{Success: true, Message: "ok"})
	})

	s.r.Route("/api/rooms", func(r chi.Router) {
		r.Post("/", s.handleCreateRoom)
		r.Get("/{code}", s.handleGetRoom)
		r.Put("/{code}/join", s.handleJoinRoom)
		r.Delete("/{code}/leave", s.handleLeaveRoom)
		r.Post("/{code}/ready", s.handleSetReady)
	})

	s.r.Route("/api/games", func(r chi.Router) {
		r.Post("/{code}/start", s.handleStartGame)
		r.Post("/{code}/action", s.handleGameAction)
		r.Get("/{code}/state", s.handleGameState)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusNotFound, ApiResponse{Success: false, Error: "not found"})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router for tests.
func (s *Server) Router() chi.Router { return s.r }

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ handlers -----------------------------------

type createRoomRequest struct {
	Name       string              `json:"name"`
	PlayerName string              `json:"playerName"`
	Settings   models.RoomSettings `json:"settings"`
}

type joinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type setReadyRequest struct {
	Ready bool `json:"ready"`
}

// roomWithToken is the payload for create and join responses.
type roomWithToken struct {
	Room        *models.Room `json:"room"`
	PlayerToken string       `json:"playerToken"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerName == "" {
		s.fail(w, http.StatusBadRequest, "playerName is required")
		return
	}
	if req.Name == "" {
		req.Name = req.PlayerName + "'s table"
	}

	room, token, err := s.manager.CreateRoom(r.Context(), req.Name, req.PlayerName, req.Settings)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusCreated, ApiResponse{Success: true, Data: roomWithToken{Room: room, PlayerToken: token}})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.Room(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: room})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerName == "" {
		s.fail(w, http.StatusBadRequest, "playerName is required")
		return
	}

	room, token, err := s.manager.JoinRoom(r.Context(), chi.URLParam(r, "code"), req.PlayerName)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: roomWithToken{Room: room, PlayerToken: token}})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.playerID(w, r)
	if !ok {
		return
	}
	room, err := s.manager.LeaveRoom(r.Context(), chi.URLParam(r, "code"), playerID)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: room})
}

func (s *Server) handleSetReady(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.playerID(w, r)
	if !ok {
		return
	}
	var req setReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	room, err := s.manager.SetPlayerReady(r.Context(), chi.URLParam(r, "code"), playerID, req.Ready)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: room})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.playerID(w, r)
	if !ok {
		return
	}
	room, err := s.manager.StartGame(r.Context(), chi.URLParam(r, "code"), playerID)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: room})
}

func (s *Server) handleGameAction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := s.playerID(w, r)
	if !ok {
		return
	}
	var action engine.GameAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid action format")
		return
	}
	if action.Type == "" {
		s.fail(w, http.StatusBadRequest, "invalid action format")
		return
	}

	room, err := s.manager.ProcessAction(r.Context(), chi.URLParam(r, "code"), playerID, action)
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: room.State})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	room, err := s.manager.Room(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.failErr(w, err)
		return
	}
	s.respond(w, http.StatusOK, ApiResponse{Success: true, Data: room.State})
}

// ------------------------------ helpers ------------------------------------

// playerID resolves the acting player from the bearer token, falling back
// to the X-Player-ID header. Writes a 400 response when neither is usable.
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err == nil {
			return claims.PlayerID, true
		}
		s.fail(w, http.StatusUnauthorized, "invalid token")
		return uuid.Nil, false
	}
	if raw := r.Header.Get("X-Player-ID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.fail(w, http.StatusBadRequest, "invalid player id")
			return uuid.Nil, false
		}
		return id, true
	}
	s.fail(w, http.StatusBadRequest, "player identification required")
	return uuid.Nil, false
}

func (s *Server) respond(w http.ResponseWriter, status int, resp ApiResponse) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.WithError(err).Warn("failed to write response")
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, ApiResponse{Success: false, Error: message})
}

// failErr maps manager errors onto HTTP statuses.
func (s *Server) failErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrNotHost):
		status = http.StatusForbidden
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrPlayersNotReady),
		errors.Is(err, game.ErrPlayerNotFound):
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "invalid action"):
		status = http.StatusBadRequest
	}
	s.fail(w, status, err.Error())
}
