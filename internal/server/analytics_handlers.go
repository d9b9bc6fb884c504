package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a number"})
			return
		}
		limit = n
	}
	entries, err := s.Analytics.GetLeaderboard(r.Context(), r.URL.Query().Get("cat"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlayerSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Analytics.GetPlayerSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
