package handler

import (
	"encoding/json"
	"net/http"

	"github.com/13x54n/thamelbar/internal/application/reward"
	"github.com/13x54n/thamelbar/internal/domain"
	"github.com/13x54n/thamelbar/internal/transport/http/middleware"
)

// RewardHandler handles the points ledger endpoints.
type RewardHandler struct {
	svc reward.Service
}

func NewRewardHandler(svc reward.Service) *RewardHandler {
	return &RewardHandler{svc: svc}
}

// Earn awards points for a bill. Staff-only; the router mounts it behind the
// staff secret middleware.
func (h *RewardHandler) Earn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string  `json:"email"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Earn(r.Context(), req.Email, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Account     *AccountPayload `json:"account"`
		Amount      float64         `json:"amount"`
		PointsAdded int64           `json:"points_added"`
	}{
		Account:     toAccountPayload(result.Account),
		Amount:      result.Amount,
		PointsAdded: result.PointsAdded,
	})
}

func (h *RewardHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	txs, err := h.svc.Transactions(r.Context(), claims.AccountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Transactions []domain.PointsTransaction `json:"transactions"`
	}{Transactions: txs})
}
