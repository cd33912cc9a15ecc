package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/sharebite/internal/db"
)

// Store issues opaque user IDs and session cookies. The rest of the
// application trusts the ID string it hands out and never looks inside it.
type Store struct {
	sc *securecookie.SecureCookie
	db *db.DB
}

type ctxKey string

const userIDKey ctxKey = "userID"

func NewStore(d *db.DB, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	// keep cookie small and secure
	sc.MaxAge(int((14 * 24 * time.Hour).Seconds()))
	return &Store{sc: sc, db: d}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

type User struct {
	ID    string
	Name  string
	Email string
	Phone string
	Role  string
}

var ErrInvalidCredentials = errors.New("invalid credentials")

func (s *Store) CreateUser(ctx context.Context, name, email, phone, role, password string) (User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	if role == "" {
		role = "donor"
	}
	u := User{ID: uuid.NewString(), Name: name, Email: strings.ToLower(email), Phone: phone, Role: role}
	_, err = s.db.Exec(ctx, `INSERT INTO users(id, name, email, phone, role, password_bcrypt) VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Name, u.Email, u.Phone, u.Role, hash)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRow(ctx, `SELECT id, name, email, phone, role, password_bcrypt FROM users WHERE email=$1`, strings.ToLower(email)).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &hash)
	if err != nil {
		if db.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, db.WrapNotFound(err)
	}
	if !CheckPassword(hash, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `SELECT id, name, email, phone, role FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role)
	if err != nil {
		return User{}, db.WrapNotFound(err)
	}
	return u, nil
}

type Session struct {
	UserID string
}

const cookieName = "sharebite_session"

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, userID string) error {
	val := map[string]any{"uid": userID, "v": 1}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil, // ok for local http; secure in https
		MaxAge:   int((14 * 24 * time.Hour).Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]any{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	uid, ok := val["uid"].(string)
	if !ok || uid == "" {
		return Session{}, false
	}
	return Session{UserID: uid}, true
}

// RequireAuth rejects unauthenticated requests with a JSON 401 and puts the
// actor's user ID on the request context for handlers.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"authentication required"}`))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}
