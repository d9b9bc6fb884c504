package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

	"playerprogress/internal/analytics"
	"playerprogress/internal/broadcast"
	"playerprogress/internal/db"
	"playerprogress/internal/goals"
	"playerprogress/internal/metrics"
	"playerprogress/internal/reports"
	"playerprogress/internal/wshub"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Goals       *goals.Service
	Reports     *reports.Tracker
	Analytics   *analytics.Queries
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	Metrics     *metrics.Metrics
	DB          *db.DB        // nil if no database configured
	Redis       *redis.Client // nil if no redis configured
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleTrackSession)

	mux.HandleFunc("POST /goals", s.handleCreateGoal)
	mux.HandleFunc("POST /goals/{id}/progress", s.handleGoalProgress)
	mux.HandleFunc("GET /users/{id}/goals", s.handleListGoals)
	mux.HandleFunc("GET /users/{id}/goals/suggested", s.handleSuggestedGoals)
	mux.HandleFunc("GET /users/{id}/stats", s.handleStats)
	mux.HandleFunc("GET /users/{id}/achievements", s.handleAchievements)
	mux.HandleFunc("POST /users/{id}/xp", s.handleAwardXP)
	mux.HandleFunc("POST /users/{id}/streak", s.handleStreak)
	mux.HandleFunc("GET /users/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /users/{id}/summary", s.handlePlayerSummary)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)

	mux.HandleFunc("POST /players/{id}/highlights", s.handleHighlights)
	mux.HandleFunc("POST /players/{id}/snapshots", s.handleSnapshot)
	mux.HandleFunc("GET /players/{id}/badges", s.handleBadges)
	mux.HandleFunc("GET /players/{id}/report", s.handleReport)
	mux.HandleFunc("DELETE /players/{id}", s.handleResetPlayer)

	if s.Hub != nil {
		mux.Handle("GET /ws", s.Hub)
	}
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Encode response: %v\n", err)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *goals.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, goals.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, goals.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, goals.ErrPersistence):
		log.Printf("[HTTP] %v\n", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "storage unavailable"})
	default:
		log.Printf("[HTTP] %v\n", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid JSON body: %v", err)})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_error", "error": err.Error()})
			return
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(r.Context()).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "redis_error", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
