// internal/httpserver/server.go
//
// HTTP server wiring for the word game.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic
//     recovery, JSON content type).
//   - Diagnostics: "/", "/health", "/debug/words".
//   - Game endpoints keyed by a caller-chosen session key:
//       POST /game              → new session (server-generated key)
//       GET  /game/{key}        → public view
//       POST /game/{key}        → submit a guess (creates the game on first use)
//       POST /game/{key}/new    → start over
//
// Notes:
//   - The answer never leaves the server while a game is in progress.
//   - Rejected guesses answer 400 with the rejection code and the unchanged view.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordgame/internal/config"
	"github.com/robalobadob/wordgame/internal/game"
	"github.com/robalobadob/wordgame/internal/session"
	"github.com/robalobadob/wordgame/internal/store"
	"github.com/robalobadob/wordgame/internal/words"
)

// Error codes returned in {"error": ...} besides the rejection scores.
const (
	codeNotFound     = "NOT_FOUND"
	codeBadKey       = "BAD_KEY"
	codeBadJSON      = "BAD_JSON"
	codeTooLarge     = "BODY_TOO_LARGE"
	codeBadOptions   = "BAD_OPTIONS"
	codeCorruptState = "CORRUPT_STATE"
	codeInternal     = "INTERNAL"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// maxBodyBytes caps request bodies; every game payload is a few short fields.
const maxBodyBytes = 4 << 10

// LexiconStats reports word list sizes for /debug/words.
type LexiconStats interface {
	Stats() (common int, all int)
}

// Server bundles the router and the session service.
type Server struct {
	r   *chi.Mux
	svc *session.Service
	lex LexiconStats
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *session.Service, lex LexiconStats, cfg config.Config) *Server {
	s := &Server{r: chi.NewRouter(), svc: svc, lex: lex}

	timeout := cfg.Server.HandlerTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(requestIDLogger)
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}).Handler)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(timeout))
	s.r.Use(chimw.RequestSize(maxBodyBytes))
	s.r.Use(jsonContentType)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordgame",
			"endpoints": []string{"/health", "POST /game", "GET /game/{key}", "POST /game/{key}", "POST /game/{key}/new"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.svc.Ping(r.Context()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("store health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		common, all := s.lex.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": common, "allowed": all})
	})

	// --- game ---
	s.r.Post("/game", s.handleCreate)
	s.r.Route("/game/{key}", func(r chi.Router) {
		r.Use(validKey)
		r.Get("/", s.handleGet)
		r.Post("/", s.handleGuess)
		r.Post("/new", s.handleNew)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": codeNotFound, "path": r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "METHOD_NOT_ALLOWED"})
	})

	return s
}

// Handler exposes the router (used by main and tests).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestIDLogger tags the request logger with chi's request ID.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// validKey rejects session keys outside [A-Za-z0-9_-]{1,128}.
func validKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !keyPattern.MatchString(chi.URLParam(r, "key")) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": codeBadKey})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the body of POST /game and POST /game/{key}/new. All fields
// are optional.
type newGameReq struct {
	Mode    string `json:"mode"`    // "random" | "daily"
	Length  int    `json:"length"`  // answer length
	Guesses int    `json:"guesses"` // guess limit
	Answer  string `json:"answer"`  // fixed answer (testing)
}

func (q newGameReq) options() session.Options {
	return session.Options{Mode: q.Mode, WordLength: q.Length, GuessLimit: q.Guesses, Answer: q.Answer}
}

type guessReq struct {
	Guess string `json:"guess"`
}

// gameRes is the public view plus request-specific fields.
type gameRes struct {
	Key   string       `json:"key,omitempty"`
	Score []game.Score `json:"score,omitempty"`
	Error string       `json:"error,omitempty"`
	game.View
}

// decodeBody decodes an optional JSON body into dst. An empty body is fine.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// badBody answers a body that could not be decoded.
func badBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": codeTooLarge})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": codeBadJSON})
}

// handleCreate starts a game under a fresh server-generated key.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		badBody(w, err)
		return
	}
	key := uuid.NewString()
	g, err := s.svc.Start(r.Context(), key, req.options())
	if err != nil {
		s.fail(w, r, key, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameRes{Key: key, View: g.View()})
}

// handleGet returns the public view of a game.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	g, err := s.svc.Get(r.Context(), key)
	if err != nil {
		s.fail(w, r, key, err)
		return
	}
	writeJSON(w, http.StatusOK, gameRes{Key: key, View: g.View()})
}

// handleGuess applies a guess. Rejections answer 400 with the unchanged view.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badBody(w, err)
		return
	}

	g, scores, err := s.svc.Guess(r.Context(), key, req.Guess)
	var rej *game.Rejection
	if errors.As(err, &rej) {
		writeJSON(w, http.StatusBadRequest, gameRes{Key: key, Error: string(rej.Code), View: g.View()})
		return
	}
	if err != nil {
		s.fail(w, r, key, err)
		return
	}
	writeJSON(w, http.StatusOK, gameRes{Key: key, Score: scores, View: g.View()})
}

// handleNew replaces the game for key with a fresh one.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req newGameReq
	if err := decodeBody(r, &req); err != nil {
		badBody(w, err)
		return
	}
	g, err := s.svc.Start(r.Context(), key, req.options())
	if err != nil {
		s.fail(w, r, key, err)
		return
	}
	writeJSON(w, http.StatusOK, gameRes{Key: key, View: g.View()})
}

// fail maps service errors to status codes and logs the unexpected ones.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, key string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": codeNotFound})
	case errors.Is(err, session.ErrBadOptions), errors.Is(err, words.ErrNoWordOfLength):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": codeBadOptions, "detail": err.Error()})
	case errors.Is(err, game.ErrCorruptState):
		hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("corrupt game state")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": codeCorruptState})
	default:
		hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("game request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": codeInternal})
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

