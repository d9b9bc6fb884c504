package server

import (
	"fmt"
	"net/http"
	"strings"

	"playerprogress/internal/goals"
)

func (s *Server) handleTrackSession(w http.ResponseWriter, r *http.Request) {
	var sess goals.Session
	if !decode(w, r, &sess) {
		return
	}
	res, err := s.Goals.TrackProgress(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type createGoalRequest struct {
	OwnerID string `json:"owner_id"`
	goals.GoalSpec
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := s.Goals.CreateGoal(r.Context(), req.OwnerID, req.GoalSpec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.Goals.Goals(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSuggestedGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.Goals.SuggestedGoals(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Increment float64 `json:"increment"`
	}
	if !decode(w, r, &req) {
		return
	}
	g, err := s.Goals.UpdateGoalProgress(r.Context(), r.PathValue("id"), req.Increment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type statsResponse struct {
	goals.UserStats
	Progress goals.LevelInfo `json:"level_progress"`
	Tier     goals.TierInfo  `json:"tier"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Goals.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	tier, err := s.Goals.Tier(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{UserStats: st, Progress: goals.LevelProgress(st.TotalXP), Tier: tier})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.Goals.Achievements(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAwardXP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	st, err := s.Goals.AwardXP(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	st, err := s.Goals.UpdateUserStreak(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleEvents streams the owner's progress events as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ownerID := r.PathValue("id")
	msgChan := s.Broadcaster.Subscribe(ownerID)
	defer s.Broadcaster.Unsubscribe(ownerID, msgChan)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-msgChan:
			fmt.Fprintf(w, "event: %s\n", msg.Event)
			for _, line := range strings.Split(msg.Msg, "\n") {
				fmt.Fprintf(w, "data: %s\n", line)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}
