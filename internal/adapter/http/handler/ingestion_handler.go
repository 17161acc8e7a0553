package handler

import (
	"context"
	"net/http"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/usecase"
)

// IngestionService defines the behavior needed by IngestionHandler.
type IngestionService interface {
	IngestEvent(ctx context.Context, event usecase.InboundEvent) (*usecase.IngestResult, error)
	ReceiptIssued(ctx context.Context, event usecase.ReceiptEvent) (*usecase.IngestResult, error)
	CardTransactionMatched(ctx context.Context, event usecase.CardTransactionEvent) (*usecase.MatchResult, error)
}

// IngestionHandler accepts credit notifications from sibling services.
// A redelivered notification answers 200 with the original entry; a new
// one answers 201.
type IngestionHandler struct {
	ingestionUC IngestionService
}

// NewIngestionHandler creates a new IngestionHandler.
func NewIngestionHandler(ingestionUC IngestionService) *IngestionHandler {
	return &IngestionHandler{ingestionUC: ingestionUC}
}

// Event ingests a generic inbound event.
func (h *IngestionHandler) Event(w http.ResponseWriter, r *http.Request) {
	var req dto.InboundEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ingestionUC.IngestEvent(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, ingestStatus(result.Created), dto.IngestFromResult(result))
}

// Receipt ingests an electronic receipt.
func (h *IngestionHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req dto.ReceiptIssuedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ingestionUC.ReceiptIssued(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, ingestStatus(result.Created), dto.IngestFromResult(result))
}

// CardTransaction matches a card purchase against eco merchants.
func (h *IngestionHandler) CardTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CardTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ingestionUC.CardTransactionMatched(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Ingest != nil && result.Ingest.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, dto.CardMatchFromResult(result))
}

func ingestStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
