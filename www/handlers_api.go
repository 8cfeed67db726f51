package www

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderdesk/dashboard"
	"orderdesk/docstore"
	"orderdesk/orders"
)

// apiOrder adds resolved image URLs to an order.
type apiOrder struct {
	orders.Order
	ImageURLs []string `json:"imageUrls"`
}

func (h *Handlers) toAPI(o orders.Order) apiOrder {
	out := apiOrder{Order: o, ImageURLs: make([]string, len(o.CartItems))}
	if res := h.engine.Assets(); res != nil {
		for i, item := range o.CartItems {
			out.ImageURLs[i] = res.URL(item.Image)
		}
	}
	return out
}

func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	v, _ := h.view(r)
	label := r.URL.Query().Get("status")
	if label == "" {
		label = v.State().Filter
	}
	if !orders.ValidFilter(label) {
		h.jsonError(w, dashboard.ErrInvalidFilter.Error()+": "+label, http.StatusBadRequest)
		return
	}
	list := orders.Filter(v.All(), label)
	out := make([]apiOrder, 0, len(list))
	for _, o := range list {
		out = append(out, h.toAPI(o))
	}
	h.jsonOK(w, out)
}

func (h *Handlers) apiReload(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	v := h.engine.Views().View(r.Context(), s.ViewID)
	v.Mount(r.Context())
	h.jsonOK(w, map[string]int{"count": len(v.All())})
}

func (h *Handlers) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	v, _ := h.view(r)
	o, ok := v.Order(chi.URLParam(r, "id"))
	if !ok {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, h.toAPI(o))
}

func (h *Handlers) apiChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	v, s := h.view(r)
	o, msg, err := v.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status, s.Email)
	if err != nil {
		h.jsonMessageError(w, msg, err)
		return
	}
	h.jsonOK(w, map[string]any{"message": msg, "order": h.toAPI(o)})
}

func (h *Handlers) apiToggle(w http.ResponseWriter, r *http.Request) {
	v, _ := h.view(r)
	expanded, err := v.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), errorStatus(err))
		return
	}
	h.jsonOK(w, map[string]string{"expanded_id": expanded})
}

func (h *Handlers) apiDeleteOrder(w http.ResponseWriter, r *http.Request) {
	v, s := h.view(r)
	confirmed := r.URL.Query().Get("confirm") == "yes"
	msg, err := v.Delete(r.Context(), chi.URLParam(r, "id"), confirmed, s.Email)
	if err != nil {
		h.jsonMessageError(w, msg, err)
		return
	}
	h.jsonOK(w, map[string]any{"message": msg})
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.engine.Health()
	status := "ok"
	if !health.DocStoreConnected {
		status = "degraded"
	}
	h.jsonOK(w, map[string]any{
		"status":      status,
		"health":      health,
		"sse_clients": h.eventHub.ClientCount(),
	})
}

// errorStatus maps domain errors to HTTP status codes. Anything unrecognised
// came from the document store.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, orders.ErrInvalidStatus), errors.Is(err, dashboard.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnknownOrder), errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrNotConfirmed):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// jsonMessageError reports err alongside the user-facing message.
func (h *Handlers) jsonMessageError(w http.ResponseWriter, msg orders.Message, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorStatus(err))
	json.NewEncoder(w).Encode(map[string]any{"error": err.Error(), "message": msg})
}
