package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	ledgerUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerUC TransferService) *TransferHandler {
	return &TransferHandler{ledgerUC: ledgerUC}
}

// Create moves value between two accounts. A transfer whose destination leg
// failed answers 409 with the compensated outcome so the caller sees the
// restored source balance.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	result, err := h.ledgerUC.Transfer(r.Context(), req.ToUseCaseInput())
	if errors.Is(err, domain.ErrTransferCompensated) && result != nil {
		writeJSON(w, http.StatusConflict, dto.CompensatedTransferResponse{
			ErrorResponse: dto.ErrorResponse{
				Error:   CodeTransferCompensated,
				Message: err.Error(),
			},
			Transfer: dto.TransferFromResult(result),
		})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromResult(result))
}
