package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitward/splitward/internal/ledger"
	"github.com/splitward/splitward/internal/middleware"
	"github.com/splitward/splitward/internal/models"
	"github.com/splitward/splitward/internal/service"
)

// Handler exposes the ledger service as a JSON API.
type Handler struct {
	ledger *service.Ledger
}

// NewHandler creates a Handler backed by the given ledger service.
func NewHandler(ledger *service.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// expenseView is an expense plus its derived settled state. The flag is
// computed on the way out; it has no stored counterpart.
type expenseView struct {
	*models.Expense
	Settled bool `json:"settled"`
}

func viewExpense(e *models.Expense) expenseView {
	return expenseView{Expense: e, Settled: e.Settled()}
}

func viewExpenses(expenses []*models.Expense) []expenseView {
	views := make([]expenseView, len(expenses))
	for i, e := range expenses {
		views[i] = viewExpense(e)
	}
	return views
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// CreateGroup handles POST /api/v1/groups.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body: %v", ledger.ErrValidation, err))
		return
	}

	group, err := h.ledger.CreateGroup(r.Context(), req.Name, middleware.GetUserID(r.Context()), req.Members)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

// ListGroups handles GET /api/v1/groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.ledger.ListGroups(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// GetGroup handles GET /api/v1/groups/{groupID}.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.ledger.GetGroup(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/v1/groups/{groupID}.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	err := h.ledger.DeleteGroup(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateExpense handles POST /api/v1/groups/{groupID}/expenses.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var params service.CreateExpenseParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, fmt.Errorf("%w: invalid request body: %v", ledger.ErrValidation, err))
		return
	}
	params.GroupID = chi.URLParam(r, "groupID")

	expense, err := h.ledger.CreateExpense(r.Context(), params, middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewExpense(expense))
}

// ListExpenses handles GET /api/v1/groups/{groupID}/expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.ledger.ListExpenses(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewExpenses(expenses))
}

// GetExpense handles GET /api/v1/expenses/{expenseID}.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.ledger.GetExpense(r.Context(), chi.URLParam(r, "expenseID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewExpense(expense))
}

// PaySplit handles POST /api/v1/expenses/{expenseID}/splits/{memberID}/pay.
func (h *Handler) PaySplit(w http.ResponseWriter, r *http.Request) {
	expense, err := h.ledger.MarkSplitPaid(r.Context(),
		chi.URLParam(r, "expenseID"),
		chi.URLParam(r, "memberID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewExpense(expense))
}

// Balances handles GET /api/v1/groups/{groupID}/balances.
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.Balances(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

// Settlement handles GET /api/v1/groups/{groupID}/settlement.
func (h *Handler) Settlement(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.ledger.SettlementPlan(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	respondJSON(w, http.StatusOK, transfers)
}
