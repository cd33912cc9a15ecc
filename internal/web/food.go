package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/sharebite/internal/auth"
	"github.com/example/sharebite/internal/food"
	"github.com/example/sharebite/internal/reservation"
)

// itemJSON is the wire form of a food item. The lifecycle fields flatten the
// reservation variant back into the status/reservedBy/reservedAt/
// pickupConfirmed shape clients expect.
type itemJSON struct {
	ID              int64      `json:"id"`
	DonorID         string     `json:"donorId"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category"`
	Quantity        int        `json:"quantity"`
	ExpiryDate      time.Time  `json:"expiryDate"`
	PickupAddress   string     `json:"pickupAddress"`
	ImageURL        string     `json:"imageURL,omitempty"`
	Status          string     `json:"status"`
	ReservedBy      *string    `json:"reservedBy"`
	ReservedAt      *time.Time `json:"reservedAt"`
	PickupConfirmed bool       `json:"pickupConfirmed"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toItemJSON(i food.Item) itemJSON {
	out := itemJSON{
		ID:            i.ID,
		DonorID:       i.DonorID,
		Name:          i.Name,
		Description:   i.Description,
		Category:      i.Category,
		Quantity:      i.Quantity,
		ExpiryDate:    i.ExpiryDate,
		PickupAddress: i.PickupAddress,
		ImageURL:      i.ImageURL,
		Status:        string(i.Status()),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
	if res := i.Reservation; res != nil {
		out.ReservedBy = &res.RecipientID
		at := res.At
		out.ReservedAt = &at
		out.PickupConfirmed = res.PickedUp
	}
	return out
}

func toItemsJSON(items []food.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, i := range items {
		out = append(out, toItemJSON(i))
	}
	return out
}

const maxImageBytes = 10 << 20

// handleDonate accepts a multipart form (fields + optional image part) and
// creates an available item owned by the session user.
func (s *Server) handleDonate(w http.ResponseWriter, r *http.Request) {
	donorID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid form data")
		return
	}

	quantity, _ := strconv.Atoi(r.FormValue("quantity"))
	expiry, err := time.Parse(time.RFC3339, r.FormValue("expiryDate"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid expiry date format")
		return
	}

	in := reservation.DonateInput{
		DonorID:       donorID,
		Name:          r.FormValue("name"),
		Description:   r.FormValue("description"),
		Category:      r.FormValue("category"),
		Quantity:      quantity,
		ExpiryDate:    expiry,
		PickupAddress: r.FormValue("pickupAddress"),
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "could not read image")
			return
		}
		in.Image = data
		in.ImageType = contentType
	}

	item, err := s.Food.Donate(r.Context(), in)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "food added successfully",
		"food":    toItemJSON(item),
	})
}

func (s *Server) handleDonorItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.Food.DonorItems(r.Context(), chi.URLParam(r, "donorID"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toItemsJSON(items))
}

// handleAvailableFeed lists available items; with a session or a recipientId
// query parameter it also includes that recipient's own reservations.
func (s *Server) handleAvailableFeed(w http.ResponseWriter, r *http.Request) {
	recipientID := r.URL.Query().Get("recipientId")
	if sess, ok := s.Auth.GetSession(r); ok {
		recipientID = sess.UserID
	}

	items, err := s.Food.AvailableFeed(r.Context(), recipientID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toItemsJSON(items))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := s.Food.GetItem(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	recipientID, _ := auth.UserIDFromContext(r.Context())
	id, err := itemID(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := s.Food.Reserve(r.Context(), id, recipientID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "food reserved",
		"food":    toItemJSON(item),
	})
}

func (s *Server) handlePickup(w http.ResponseWriter, r *http.Request) {
	recipientID, _ := auth.UserIDFromContext(r.Context())
	id, err := itemID(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, distance, err := s.Food.ConfirmPickup(r.Context(), id, recipientID, body.Latitude, body.Longitude)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":  "pickup verified",
		"distance": distance,
		"food":     toItemJSON(item),
	})
}

// handleReleaseExpired is the on-demand expiry sweep.
func (s *Server) handleReleaseExpired(w http.ResponseWriter, r *http.Request) {
	n, err := s.Food.SweepExpired(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":        "expired reservations released",
		"reclaimedCount": n,
	})
}

func itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
