package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prasetyadi/marketcore/internal/audit"
	"github.com/prasetyadi/marketcore/internal/metrics"
	"github.com/prasetyadi/marketcore/internal/wallet"
)

type WalletHandler struct {
	Store *wallet.Store
	Audit *audit.Logger
}

type WalletMutationReq struct {
	AmountCents int64  `json:"amount_cents"`
	ActorID     string `json:"actor_id"`
	ActorRole   string `json:"actor_role"`
}

type WalletBalanceResp struct {
	WalletID     string `json:"wallet_id"`
	BalanceCents int64  `json:"balance_cents"`
}

func (h *WalletHandler) Register(r *chi.Mux) {
	r.Post("/wallets/{id}/credit", h.credit)
	r.Post("/wallets/{id}/debit", h.debit)
	r.Get("/wallets/{id}/balance", h.balance)
}

func (h *WalletHandler) credit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, audit.ActionWalletCredited, h.Store.Credit)
}

func (h *WalletHandler) debit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, audit.ActionWalletDebited, h.Store.Debit)
}

func (h *WalletHandler) mutate(w http.ResponseWriter, r *http.Request, action string,
	op func(context.Context, string, int64) error) {

	walletID := chi.URLParam(r, "id")
	var req WalletMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if walletID == "" || req.AmountCents <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, walletID, req.AmountCents); err != nil {
		metrics.RecordOperation("wallet.mutate", false)
		if errors.Is(err, wallet.ErrIncrementFailed) {
			// nothing was applied; safe to retry
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "try again"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	metrics.RecordOperation("wallet.mutate", true)

	h.Audit.Log(audit.Event{
		Action:    action,
		ActorID:   req.ActorID,
		ActorRole: req.ActorRole,
		Target: audit.Target{
			Type:     "wallet",
			ID:       walletID,
			Metadata: map[string]any{"amount_cents": req.AmountCents},
		},
	}, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusOK, map[string]string{"wallet_id": walletID, "result": "applied"})
}

func (h *WalletHandler) balance(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	total, err := h.Store.Aggregate(ctx, walletID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, WalletBalanceResp{WalletID: walletID, BalanceCents: total})
}
