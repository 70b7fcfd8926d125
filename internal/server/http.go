package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nepalkings/kings-server/internal/config"
	"github.com/nepalkings/kings-server/internal/game"
	"github.com/nepalkings/kings-server/internal/user"
)

// Server is the HTTP front of the rules engine.
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	engine  *game.KingsEngine
	userMgr *user.Manager
	hub     *Hub

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

// NewServer wires the engine, user manager and websocket hub behind
// the HTTP API.
func NewServer(cfg *config.Config, engine *game.KingsEngine, userMgr *user.Manager, logger *zap.Logger) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		engine:   engine,
		userMgr:  userMgr,
		hub:      NewHub(logger),
		limiters: make(map[string]*rate.Limiter),
	}
	engine.SetNotificationHandler(s.hub.Broadcast)
	return s
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)

	mux.HandleFunc("GET /api/catalog/figures", s.handleFigureCatalog)
	mux.HandleFunc("GET /api/catalog/spells", s.handleSpellCatalog)

	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}/view", s.handleView)
	mux.HandleFunc("GET /api/games/{id}/resources", s.handleResources)
	mux.HandleFunc("POST /api/games/{id}/turn/start", s.handleStartTurn)
	mux.HandleFunc("POST /api/games/{id}/turn/end", s.handleEndTurn)
	mux.HandleFunc("POST /api/games/{id}/figures/find", s.handleFindBuildable)
	mux.HandleFunc("POST /api/games/{id}/figures/build", s.handleBuildFigure)
	mux.HandleFunc("POST /api/games/{id}/figures/upgrade", s.handleUpgradeFigure)
	mux.HandleFunc("POST /api/games/{id}/figures/pickup", s.handlePickupFigure)
	mux.HandleFunc("POST /api/games/{id}/spells/cast", s.handleCastSpell)
	mux.HandleFunc("POST /api/games/{id}/spells/counter", s.handleCounterSpell)
	mux.HandleFunc("POST /api/games/{id}/spells/allow", s.handleAllowSpell)
	mux.HandleFunc("POST /api/games/{id}/spells/end-hammer", s.handleEndInfiniteHammer)
	mux.HandleFunc("POST /api/games/{id}/discard", s.handleDiscard)
	mux.HandleFunc("POST /api/games/{id}/chat", s.handleChat)
	mux.HandleFunc("GET /api/games/{id}/ws", s.handleWebSocket)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s.withLogging(s.withRateLimit(mux))
}

// withRateLimit enforces a per-client token bucket keyed by remote IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiterFor(clientIP(r)).Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorBody("too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limiterFor(key string) *rate.Limiter {
	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.config.Server.RateLimit), s.config.Server.Burst)
		s.limiters[key] = limiter
	}
	return limiter
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// withLogging logs every request with its duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(message string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": message}
}

// writeError maps engine errors onto HTTP statuses: rejected actions
// are 400s with the engine's game-meaningful message, unknown entities
// are 404s.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *game.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody(verr.Reason))
		return
	}
	var nferr *game.NotFoundError
	if errors.As(err, &nferr) {
		writeJSON(w, http.StatusNotFound, errorBody(nferr.Error()))
		return
	}
	s.logger.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
