package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// ScheduleService defines the behavior needed by ScheduleHandler.
type ScheduleService interface {
	Create(ctx context.Context, input usecase.CreateScheduleInput) (*domain.ScheduledTransfer, error)
	Update(ctx context.Context, input usecase.UpdateScheduleInput) (*domain.ScheduledTransfer, error)
	Disable(ctx context.Context, id, ownerID string) (*domain.ScheduledTransfer, error)
	Get(ctx context.Context, id string) (*domain.ScheduledTransfer, error)
	ListByAccount(ctx context.Context, input usecase.ListByAccountInput) ([]*domain.ScheduledTransfer, error)
}

// ScheduleHandler manages recurring transfer directives. Execution belongs
// to the scheduler; there is no route that runs a directive.
type ScheduleHandler struct {
	scheduleUC ScheduleService
	codec      usecase.TokenCodec
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleUC ScheduleService, codec usecase.TokenCodec) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleUC: scheduleUC,
		codec:      codec,
	}
}

// Create registers a directive for the calling owner.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	ownerID, err := h.codec.Decode(req.AccountOwnerIdentity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	directive, err := h.scheduleUC.Create(r.Context(), req.ToUseCaseInput(ownerID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ScheduleFromDomain(directive))
}

// Get retrieves a directive by ID.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	directive, err := h.scheduleUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(directive))
}

// List lists directives touching the accountId query parameter.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing accountId", false)
		return
	}

	directives, err := h.scheduleUC.ListByAccount(r.Context(), usecase.ListByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSchedulesResponse{
		Schedules: dto.SchedulesFromDomain(directives),
	})
}

// Update changes the given fields of the caller's directive.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	ownerID, err := h.codec.Decode(req.AccountOwnerIdentity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	directive, err := h.scheduleUC.Update(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id"), ownerID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(directive))
}

// Disable stops the caller's directive from running.
func (h *ScheduleHandler) Disable(w http.ResponseWriter, r *http.Request) {
	var req dto.OwnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	ownerID, err := h.codec.Decode(req.AccountOwnerIdentity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	directive, err := h.scheduleUC.Disable(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(directive))
}
