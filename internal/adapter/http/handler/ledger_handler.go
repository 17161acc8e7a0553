package handler

import (
	"context"
	"net/http"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// LedgerQueryService defines the behavior needed by LedgerHandler.
type LedgerQueryService interface {
	QueryLedger(ctx context.Context, token string) (*usecase.LedgerQuery, error)
}

// AccountLister lists the accounts behind an identity token.
type AccountLister interface {
	ListByToken(ctx context.Context, token string) ([]*domain.Account, error)
}

// LedgerHandler answers sibling services' queries about a customer.
type LedgerHandler struct {
	tierUC   LedgerQueryService
	accounts AccountLister
	service  string
}

// NewLedgerHandler creates a new LedgerHandler. service names this
// service in account summaries.
func NewLedgerHandler(tierUC LedgerQueryService, accounts AccountLister, service string) *LedgerHandler {
	return &LedgerHandler{
		tierUC:   tierUC,
		accounts: accounts,
		service:  service,
	}
}

// Query reports the customer's tier and seed balance.
func (h *LedgerHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req dto.LedgerQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	query, err := h.tierUC.QueryLedger(r.Context(), req.AccountOwnerIdentity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerQueryFromResult(query))
}

// Accounts summarises the customer's accounts held here.
func (h *LedgerHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing token", false)
		return
	}

	accounts, err := h.accounts.ListByToken(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	summaries := make([]usecase.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, usecase.SummarizeAccount(h.service, a))
	}
	writeJSON(w, http.StatusOK, dto.AccountSummariesResponse{Accounts: summaries})
}
