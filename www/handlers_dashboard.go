package www

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"orderdesk/dashboard"
	"orderdesk/orders"
)

// view returns the session's dashboard view, mounting it on first use.
func (h *Handlers) view(r *http.Request) (*dashboard.View, Session) {
	s := h.session(r)
	v := h.engine.Views().View(r.Context(), s.ViewID)
	v.EnsureMounted(r.Context())
	return v, s
}

func (h *Handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	v := h.engine.Views().View(r.Context(), s.ViewID)
	if r.URL.Query().Get("reload") == "1" {
		v.Mount(r.Context())
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	v.EnsureMounted(r.Context())

	data := map[string]any{
		"Page":          "dashboard",
		"Authenticated": true,
		"Email":         s.Email,
		"State":         v.State(),
		"Filters":       orders.FilterLabels,
		"Statuses":      orders.Statuses,
		"Flashes":       h.popFlashes(w, r),
		"DocStore":      h.engine.DocStore().Name(),
	}
	if id := r.URL.Query().Get("confirm"); id != "" {
		if o, ok := v.Order(id); ok {
			data["Confirm"] = o
			data["ConfirmMsg"] = orders.MsgConfirmDelete
		}
	}
	h.render(w, "dashboard.html", data)
}

func (h *Handlers) handleFilter(w http.ResponseWriter, r *http.Request) {
	v, _ := h.view(r)
	if err := v.SetFilter(r.Context(), r.FormValue("status")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handlers) handleToggle(w http.ResponseWriter, r *http.Request) {
	v, _ := h.view(r)
	id := r.FormValue("id")
	if _, err := v.Toggle(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/dashboard#order-"+url.PathEscape(id), http.StatusSeeOther)
}

func (h *Handlers) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	v, s := h.view(r)
	id := chi.URLParam(r, "id")
	_, msg, _ := v.ChangeStatus(r.Context(), id, r.FormValue("status"), s.Email)
	h.addFlash(w, r, msg)
	http.Redirect(w, r, "/dashboard#order-"+url.PathEscape(id), http.StatusSeeOther)
}

// handleDelete removes the order when the form carries confirm=yes; without
// it the dashboard is shown again with the confirmation dialog open.
func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	v, s := h.view(r)
	id := chi.URLParam(r, "id")
	msg, err := v.Delete(r.Context(), id, r.FormValue("confirm") == "yes", s.Email)
	if errors.Is(err, dashboard.ErrNotConfirmed) {
		http.Redirect(w, r, "/dashboard?confirm="+url.QueryEscape(id), http.StatusSeeOther)
		return
	}
	h.addFlash(w, r, msg)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
