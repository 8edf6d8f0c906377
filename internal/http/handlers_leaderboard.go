package http

import (
	"net/http"

	"plutus/internal/auth"
	"plutus/internal/services"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request, _ auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	entries, err := s.leaderboard.Get(r.Context(), p.Year, p.Month)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []services.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
