package www

import (
	"encoding/gob"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"orderdesk/config"
	"orderdesk/orders"
	"orderdesk/store"
)

const sessionName = "orderdesk-session"

func init() {
	// Flashes carry the toast payload through the cookie.
	gob.Register(orders.Message{})
}

// Session is the authentication state of one browser.
type Session struct {
	Authenticated bool
	Email         string
	ViewID        string
}

func newSessionStore(cfg config.WebConfig) *sessions.CookieStore {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = "orderdesk-default-secret-change-me"
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.Path = "/"
	s.Options.HttpOnly = true
	s.Options.Secure = cfg.SecureCookies
	s.Options.SameSite = http.SameSiteLaxMode
	return s
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *Handlers) session(r *http.Request) Session {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return Session{}
	}
	auth, _ := sess.Values["authenticated"].(bool)
	email, _ := sess.Values["email"].(string)
	viewID, _ := sess.Values["view_id"].(string)
	return Session{Authenticated: auth && viewID != "", Email: email, ViewID: viewID}
}

func (h *Handlers) saveSession(w http.ResponseWriter, r *http.Request, s Session) {
	sess, _ := h.sessions.Get(r, sessionName)
	sess.Values["authenticated"] = s.Authenticated
	sess.Values["email"] = s.Email
	sess.Values["view_id"] = s.ViewID
	if err := sess.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
	}
}

// authenticate accepts only the configured email, matched exactly, with a
// password matching the stored bcrypt hash.
func (h *Handlers) authenticate(email, password string) bool {
	if email == "" || email != h.engine.AppConfig().Auth.Email {
		return false
	}
	user, err := h.engine.DB().GetAdminUser(email)
	if err != nil {
		return false
	}
	return checkPassword(user.PasswordHash, password)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request, email string) {
	h.saveSession(w, r, Session{Authenticated: true, Email: email, ViewID: uuid.NewString()})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if s.ViewID != "" {
		h.engine.Views().Discard(r.Context(), s.ViewID)
	}
	h.saveSession(w, r, Session{})
}

func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.session(r).Authenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) requireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.session(r).Authenticated {
			h.jsonError(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ensureAdmin seeds the configured credential into admin_users. An empty
// email or an empty credential is refused rather than seeded.
func ensureAdmin(cfg config.AuthConfig, db *store.DB) error {
	if cfg.Email == "" {
		return errors.New("auth.email is required")
	}
	hash := cfg.PasswordHash
	if hash == "" {
		if cfg.Password == "" {
			return errors.New("auth.password or auth.password_hash is required")
		}
		var err error
		if hash, err = hashPassword(cfg.Password); err != nil {
			return err
		}
	} else if !strings.HasPrefix(hash, "$2") {
		log.Printf("auth: auth.password_hash does not look like a bcrypt hash")
	}
	exists, err := db.AdminUserExists()
	if err != nil {
		return err
	}
	if err := db.UpsertAdminUser(cfg.Email, hash); err != nil {
		return err
	}
	if exists {
		log.Printf("auth: admin credential refreshed for %s", cfg.Email)
	} else {
		log.Printf("auth: admin %s created", cfg.Email)
	}
	return nil
}

func (h *Handlers) addFlash(w http.ResponseWriter, r *http.Request, msg orders.Message) {
	sess, _ := h.sessions.Get(r, sessionName)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		log.Printf("auth: flash save error: %v", err)
	}
}

func (h *Handlers) popFlashes(w http.ResponseWriter, r *http.Request) []orders.Message {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	sess.Save(r, w)
	out := make([]orders.Message, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(orders.Message); ok {
			out = append(out, m)
		}
	}
	return out
}
