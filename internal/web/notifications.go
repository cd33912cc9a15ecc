package web

import (
	"net/http"

	"github.com/example/sharebite/internal/auth"
)

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	list, err := s.Notifications.ListForUser(r.Context(), uid)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	n, err := s.Notifications.MarkAllRead(r.Context(), uid)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "all notifications marked as read",
		"marked":  n,
	})
}
