package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// BenefitService defines the behavior needed by BenefitHandler.
type BenefitService interface {
	Calculate(ctx context.Context, token string) (*usecase.Benefit, error)
}

// SettlementService lists recorded scheduler outcomes.
type SettlementService interface {
	ListRuns(ctx context.Context, date time.Time) ([]*domain.SettlementRun, error)
}

// BenefitHandler serves tier benefits and settlement reports.
type BenefitHandler struct {
	benefitUC    BenefitService
	settlementUC SettlementService
}

// NewBenefitHandler creates a new BenefitHandler.
func NewBenefitHandler(benefitUC BenefitService, settlementUC SettlementService) *BenefitHandler {
	return &BenefitHandler{
		benefitUC:    benefitUC,
		settlementUC: settlementUC,
	}
}

// Calculate estimates the customer's monthly preferential benefit.
func (h *BenefitHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing token", false)
		return
	}

	benefit, err := h.benefitUC.Calculate(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BenefitFromResult(benefit))
}

// SettlementRuns lists scheduler outcomes for the date query parameter,
// today when absent.
func (h *BenefitHandler) SettlementRuns(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid date (use YYYY-MM-DD)", false)
			return
		}
		date = parsed
	}

	runs, err := h.settlementUC.ListRuns(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runDate": date.Format(time.DateOnly),
		"runs":    dto.SettlementRunsFromDomain(runs),
	})
}
