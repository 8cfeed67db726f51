package www

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"orderdesk/engine"
	"orderdesk/orders"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	tmpls    map[string]*template.Template
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func(), error) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web),
		tmpls:    parsePages(eng.Assets()),
		eventHub: hub,
	}

	if err := ensureAdmin(eng.AppConfig().Auth, eng.DB()); err != nil {
		hub.Stop()
		return nil, nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Static files
	r.Handle("/static/*", staticHandler())

	// Public routes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)
	r.Get("/api/health", h.apiHealthCheck)

	// Protected pages
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/dashboard", h.handleDashboard)
		r.Post("/dashboard/filter", h.handleFilter)
		r.Post("/dashboard/toggle", h.handleToggle)
		r.Post("/orders/{id}/status", h.handleStatusChange)
		r.Post("/orders/{id}/delete", h.handleDelete)
		r.Get("/events", hub.SSEHandler)
	})

	// Protected API
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(h.requireAPIAuth)
		r.Get("/", h.apiListOrders)
		r.Post("/reload", h.apiReload)
		r.Get("/{id}", h.apiGetOrder)
		r.Post("/{id}/status", h.apiChangeStatus)
		r.Post("/{id}/toggle", h.apiToggle)
		r.Delete("/{id}", h.apiDeleteOrder)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn, nil
}

func (h *Handlers) render(w http.ResponseWriter, name string, data any) {
	h.renderStatus(w, http.StatusOK, name, data)
}

// renderStatus executes into a buffer first so a template error can still
// produce a clean 500.
func (h *Handlers) renderStatus(w http.ResponseWriter, code int, name string, data any) {
	tmpl, ok := h.tmpls[name]
	if !ok {
		log.Printf("render: template %q not found", name)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	buf.WriteTo(w)
}

func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.session(r).Authenticated {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, "login.html", map[string]any{
		"Page":  "login",
		"Email": "",
	})
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if !h.authenticate(email, password) {
		log.Printf("auth: failed login for %q", email)
		h.renderStatus(w, http.StatusUnauthorized, "login.html", map[string]any{
			"Page":  "login",
			"Email": email,
			"Error": orders.MsgLoginFailed,
		})
		return
	}

	h.login(w, r, email)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
