package web

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if !s.Payments.Configured() {
		respondMessage(w, http.StatusServiceUnavailable, "payments not configured")
		return
	}
	var body struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Amount == "" {
		respondMessage(w, http.StatusBadRequest, "amount is required")
		return
	}

	id, err := s.Payments.CreateOrder(r.Context(), body.Amount)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	if !s.Payments.Configured() {
		respondMessage(w, http.StatusServiceUnavailable, "payments not configured")
		return
	}
	var body struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OrderID == "" {
		respondMessage(w, http.StatusBadRequest, "orderId is required")
		return
	}

	capture, err := s.Payments.CaptureOrder(r.Context(), body.OrderID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"capture": capture})
}
