package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	Enroll(ctx context.Context, input usecase.EnrollInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListByToken(ctx context.Context, token string) ([]*domain.Account, error)
	Suspend(ctx context.Context, id string) (*domain.Account, error)
	Reactivate(ctx context.Context, id string) (*domain.Account, error)
	Close(ctx context.Context, id string) (*domain.Account, error)
}

// LedgerService defines the ledger mutations exposed per account.
type LedgerService interface {
	Earn(ctx context.Context, input usecase.EarnInput) (*usecase.MutationResult, error)
	Spend(ctx context.Context, input usecase.SpendInput) (*usecase.MutationResult, error)
	Convert(ctx context.Context, input usecase.ConvertInput) (*usecase.MutationResult, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
}

// ReconciliationService replays an account's entries.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	ledgerUC  LedgerService
	reconUC   ReconciliationService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, ledgerUC LedgerService, reconUC ReconciliationService) *AccountHandler {
	return &AccountHandler{
		accountUC: accountUC,
		ledgerUC:  ledgerUC,
		reconUC:   reconUC,
	}
}

// Enroll opens an account for the identity in a ledger domain.
func (h *AccountHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req dto.EnrollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	account, err := h.accountUC.Enroll(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the accounts behind the token query parameter.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing token", false)
		return
	}

	accounts, err := h.accountUC.ListByToken(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Suspend blocks debits on an account.
func (h *AccountHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Suspend)
}

// Reactivate lifts a suspension.
func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Reactivate)
}

// Close closes an account for good.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Close)
}

func (h *AccountHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id string) (*domain.Account, error),
) {
	account, err := apply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Earn credits the account.
func (h *AccountHandler) Earn(w http.ResponseWriter, r *http.Request) {
	var req dto.EarnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ledgerUC.Earn(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}

// Spend debits the account.
func (h *AccountHandler) Spend(w http.ResponseWriter, r *http.Request) {
	var req dto.SpendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ledgerUC.Spend(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}

// Convert debits the account and queues a credit in the target service.
func (h *AccountHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req dto.ConvertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ledgerUC.Convert(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.MutationFromResult(result))
}

// Entries lists the account's entries, newest first.
func (h *AccountHandler) Entries(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		AccountID: chi.URLParam(r, "id"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Limit:   limit,
		Offset:  offset,
	})
}

// Verify replays the account's entries against its stored balance.
func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconUC.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if !result.IsReconciled {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ReconciliationFromResult(result))
}
