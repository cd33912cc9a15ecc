package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/sharebite/internal/auth"
)

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

func toUserJSON(u auth.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		respondMessage(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	u, err := s.Auth.CreateUser(r.Context(), body.Name, body.Email, body.Phone, body.Role, body.Password)
	if err != nil {
		// unique violation on email is the common failure here
		respondMessage(w, http.StatusBadRequest, "user already exists")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user":    toUserJSON(u),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.Auth.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		respondErr(w, err)
		return
	}
	if err := s.Auth.SetSession(w, r, u.ID); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": toUserJSON(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.Auth.ClearSession(w)
	respondMessage(w, http.StatusOK, "logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	u, err := s.Auth.GetUser(r.Context(), uid)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserJSON(u))
}
