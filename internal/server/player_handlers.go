package server

import (
	"errors"
	"log"
	"net/http"

	"playerprogress/internal/badges"
	"playerprogress/internal/goals"
	"playerprogress/internal/trends"
)

type highlightsRequest struct {
	Highlights []trends.Highlight `json:"highlights"`
}

type highlightsResponse struct {
	PlayerID  string               `json:"player_id"`
	NewBadges []badges.EarnedBadge `json:"new_badges"`
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	var req highlightsRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	earned, err := s.Reports.AddHighlights(r.Context(), id, req.Highlights)
	if errors.Is(err, goals.ErrValidation) {
		writeError(w, err)
		return
	}
	if err != nil {
		// highlights and badges are already applied; only the reward write failed
		log.Printf("[Badges] Recording rewards for %s: %v\n", id, err)
	}
	writeJSON(w, http.StatusOK, highlightsResponse{PlayerID: id, NewBadges: earned})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap trends.StatSnapshot
	if !decode(w, r, &snap) {
		return
	}
	if err := s.Reports.AddSnapshot(r.Context(), r.PathValue("id"), snap); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Reports.Badges(r.PathValue("id")))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Reports.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleResetPlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.Reports.Forget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
