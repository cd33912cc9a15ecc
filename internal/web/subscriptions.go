package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/sharebite/internal/auth"
	"github.com/example/sharebite/internal/db"
)

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	sub, err := s.Subscriptions.Get(r.Context(), uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondJSON(w, http.StatusOK, map[string]any{"subscribed": false, "email": nil})
			return
		}
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscribed": true, "email": sub.Email})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		respondMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	sub, err := s.Subscriptions.Subscribe(r.Context(), uid, body.Email)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "please enter a valid email")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    "subscribed successfully",
		"subscribed": true,
		"email":      sub.Email,
	})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := s.Subscriptions.Unsubscribe(r.Context(), uid); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "no active subscription found for this user")
			return
		}
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    "unsubscribed successfully",
		"subscribed": false,
	})
}
