package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/prasetyadi/marketcore/internal/audit"
	"github.com/prasetyadi/marketcore/internal/metrics"
	"github.com/prasetyadi/marketcore/internal/orders"
	"github.com/prasetyadi/marketcore/internal/postgres"
	"github.com/prasetyadi/marketcore/internal/redisx"
)

type OrdersHandler struct {
	Repo  *orders.Repo
	Audit *audit.Logger
	Redis *redis.Client
}

type PlaceOrderResp struct {
	OrderID    string        `json:"order_id"`
	Status     orders.Status `json:"status"`
	TotalCents int           `json:"total_cents"`
	Idempotent bool          `json:"idempotent"`
}

type UpdateStatusReq struct {
	Status    orders.Status `json:"status"`
	ActorID   string        `json:"actor_id"`
	ActorRole string        `json:"actor_role"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Get("/products", h.listProducts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOrderErr maps typed repo errors onto status codes; store internals
// never reach the client.
func writeOrderErr(w http.ResponseWriter, err error) {
	var notFound *orders.ProductNotFoundError
	var short *orders.InsufficientStockError
	var badStep *orders.InvalidTransitionError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &short):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      short.Error(),
			"product_id": short.ProductID,
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.As(err, &badStep):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": badStep.Error()})
	case errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, postgres.ErrTxConflict):
		// fully rolled back; client may retry from scratch
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "conflict, please retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ExternalID == "" || req.CustomerID == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, existed, err := h.Repo.PlaceOrder(ctx, req)
	if err != nil {
		metrics.RecordOperation("order.place", false)
		writeOrderErr(w, err)
		return
	}
	metrics.RecordOperation("order.place", true)

	// idempotency shortcut + status cache; DB is the source of truth
	idemKey := fmt.Sprintf(redisx.KeyIdemOrderPlace, req.ExternalID)
	_ = h.Redis.Set(ctx, idemKey, order.ID, redisx.TTLIdempotency).Err()
	h.cacheStatus(ctx, order.ID, order.Status)

	if !existed {
		h.Audit.Log(audit.Event{
			Action:    audit.ActionOrderCreated,
			ActorID:   req.CustomerID,
			ActorRole: "customer",
			Target: audit.Target{
				Type: "order",
				ID:   order.ID,
				Metadata: map[string]any{
					"total_cents": order.TotalCents,
					"items":       len(order.Items),
				},
			},
		}, r.Header.Get("X-Request-Id"))
	}

	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, PlaceOrderResp{
		OrderID:    order.ID,
		Status:     order.Status,
		TotalCents: order.TotalCents,
		Idempotent: existed,
	})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if orderID == "" || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.UpdateStatus(ctx, orderID, req.Status); err != nil {
		metrics.RecordOperation("order.update_status", false)
		writeOrderErr(w, err)
		return
	}
	metrics.RecordOperation("order.update_status", true)

	h.cacheStatus(ctx, orderID, req.Status)
	h.Audit.Log(audit.Event{
		Action:    audit.ActionStatusChanged,
		ActorID:   req.ActorID,
		ActorRole: req.ActorRole,
		Target: audit.Target{
			Type:     "order",
			ID:       orderID,
			Metadata: map[string]any{"status": string(req.Status)},
		},
	}, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "status": req.Status})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Repo.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// fast path cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	order, err := h.Repo.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderErr(w, err)
		return
	}
	h.cacheStatus(ctx, order.ID, order.Status)
	writeJSON(w, http.StatusOK, map[string]any{"status": order.Status})
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, status orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
