// Package server exposes a board over HTTP: JSON endpoints for evaluating
// formulas and moving regions, an SVG view, and a WebSocket feed that
// pushes re-evaluated state whenever the board changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/pflow-xyz/go-venn/cache"
	"github.com/pflow-xyz/go-venn/geometry"
	"github.com/pflow-xyz/go-venn/history"
	"github.com/pflow-xyz/go-venn/render"
	"github.com/pflow-xyz/go-venn/setexpr"
)

// DefaultFormula is shown when a session starts or resets.
const DefaultFormula = "A U B"

// Server owns a board and the current formula. The core evaluator is
// pure; all shared mutable state lives here behind the mutex.
type Server struct {
	mu      sync.RWMutex
	board   *geometry.Board
	formula string

	cache    *cache.ResultCache
	store    history.Store
	renderer *render.Renderer
	log      zerolog.Logger

	clientMu sync.Mutex
	clients  map[*client]bool
}

// RegionState describes one region in API responses.
type RegionState struct {
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	R       float64 `json:"r"`
	Visible bool    `json:"visible"`
}

// BoardState is the API view of the board: the formula, the regions, and
// the size of the result set. When the formula does not parse, Error
// carries the message and Points is zero - the "no points" fallback is
// presentation policy, not an evaluator guarantee.
type BoardState struct {
	Formula  string        `json:"formula"`
	Regions  []RegionState `json:"regions"`
	Universe int           `json:"universe"`
	Points   int           `json:"points"`
	Error    string        `json:"error,omitempty"`
}

// NewServer creates a server around the given board. A nil board gets
// the default three-region layout.
func NewServer(board *geometry.Board) *Server {
	if board == nil {
		board = geometry.DefaultBoard()
	}
	return &Server{
		board:    board,
		formula:  DefaultFormula,
		cache:    cache.NewResultCache(256),
		renderer: render.NewRenderer(800, 800),
		log:      zerolog.New(os.Stderr).With().Timestamp().Str("component", "server").Logger(),
		clients:  make(map[*client]bool),
	}
}

// SetStore enables history persistence.
func (s *Server) SetStore(store history.Store) {
	s.store = store
}

// SetLogger replaces the default stderr logger.
func (s *Server) SetLogger(log zerolog.Logger) {
	s.log = log
}

// ServeHTTP routes API requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		s.handleHealth(w, r)
	case "/api/board":
		s.handleBoard(w, r)
	case "/api/evaluate":
		s.handleEvaluate(w, r)
	case "/api/regions/move":
		s.handleMove(w, r)
	case "/api/reset":
		s.handleReset(w, r)
	case "/api/history":
		s.handleHistory(w, r)
	case "/svg":
		s.handleSVG(w, r)
	case "/ws":
		s.handleWebSocket(w, r)
	default:
		http.NotFound(w, r)
	}
}

// evaluate computes the result vector for the current formula and
// geometry, consulting the cache first. Callers hold at least a read
// lock. A nil vector with a nil error means the formula was empty.
func (s *Server) evaluate() (*bitset.BitSet, error) {
	key := cache.Key(s.formula, s.board.Regions())
	if result := s.cache.Get(key); result != nil {
		return result, nil
	}
	result, err := s.board.Evaluate(s.formula)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, result)
	return result, nil
}

// state builds the API view under a read lock.
func (s *Server) state() BoardState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := BoardState{
		Formula:  s.formula,
		Universe: int(s.board.Grid().Size()),
	}

	result, err := s.evaluate()
	if err != nil {
		st.Error = err.Error()
	} else {
		st.Points = int(result.Count())
	}

	used := setexpr.UsedSets(s.formula, s.board.Names())
	visible := make(map[string]bool, len(used))
	for _, name := range used {
		visible[name] = true
	}
	for _, region := range s.board.Regions() {
		st.Regions = append(st.Regions, RegionState{
			Name:    region.Name,
			Color:   region.Color,
			X:       region.Circle.X,
			Y:       region.Circle.Y,
			R:       region.Circle.R,
			Visible: visible[region.Name] || len(used) == 0,
		})
	}
	return st
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hits, misses, _ := s.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"cache_hits":   hits,
		"cache_misses": misses,
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Formula string `json:"formula"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	s.formula = req.Formula
	result, err := s.evaluate()
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Str("formula", req.Formula).Err(err).Msg("formula rejected")
		writeJSON(w, http.StatusUnprocessableEntity, s.state())
		s.broadcast()
		return
	}

	s.log.Info().Str("formula", req.Formula).Uint("points", result.Count()).Msg("formula evaluated")
	s.record(r.Context(), req.Formula, result)
	writeJSON(w, http.StatusOK, s.state())
	s.broadcast()
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name string  `json:"name"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	err := s.board.MoveRegion(req.Name, req.X, req.Y)
	s.mu.Unlock()

	if errors.Is(err, geometry.ErrUnknownRegion) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.log.Debug().Str("region", req.Name).Float64("x", req.X).Float64("y", req.Y).Msg("region moved")
	writeJSON(w, http.StatusOK, s.state())
	s.broadcast()
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	s.board.Reset()
	s.formula = DefaultFormula
	s.mu.Unlock()

	s.log.Info().Msg("board reset")
	writeJSON(w, http.StatusOK, s.state())
	s.broadcast()
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []history.Entry{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	entries, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("history query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	formula := s.formula
	result, err := s.evaluate()
	svg := s.renderer.Render(s.board, formula, result)
	s.mu.RUnlock()

	if err != nil {
		// Malformed formula renders as the empty set.
		s.log.Debug().Err(err).Msg("rendering error state")
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}

// record appends a successful evaluation to the history store.
func (s *Server) record(ctx context.Context, formula string, result *bitset.BitSet) {
	if s.store == nil {
		return
	}
	entry := history.NewEntry(formula, int(result.Count()), int(result.Len()))
	if err := s.store.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Msg("history append failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
