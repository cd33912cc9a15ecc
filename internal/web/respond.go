package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/sharebite/internal/db"
	"github.com/example/sharebite/internal/food"
	"github.com/example/sharebite/internal/reservation"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

// respondErr maps the domain error taxonomy onto HTTP statuses. Out-of-range
// pickups carry the measured distance in the body.
func respondErr(w http.ResponseWriter, err error) {
	var oor *reservation.OutOfRangeError
	switch {
	case errors.Is(err, db.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, food.ErrConflict):
		respondMessage(w, http.StatusConflict, "food already reserved or picked up")
	case errors.Is(err, reservation.ErrForbidden):
		respondMessage(w, http.StatusForbidden, "you cannot confirm pickup for this item")
	case errors.As(err, &oor):
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"message":        "you must be within 500 meters of the pickup location to confirm pickup",
			"actualDistance": oor.DistanceMeters,
		})
	case errors.Is(err, reservation.ErrValidation):
		respondMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("web: internal error: %v", err)
		respondMessage(w, http.StatusInternalServerError, "server error")
	}
}
