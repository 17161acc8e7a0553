package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

type benefitServiceStub struct {
	benefit *usecase.Benefit
	err     error
}

func (s *benefitServiceStub) Calculate(ctx context.Context, token string) (*usecase.Benefit, error) {
	return s.benefit, s.err
}

type settlementServiceStub struct {
	date time.Time
	runs []*domain.SettlementRun
}

func (s *settlementServiceStub) ListRuns(ctx context.Context, date time.Time) ([]*domain.SettlementRun, error) {
	s.date = date
	return s.runs, nil
}

func TestBenefitHandler_Calculate(t *testing.T) {
	handler := NewBenefitHandler(&benefitServiceStub{benefit: &usecase.Benefit{
		Tier:  domain.TierExpert,
		Total: 8000,
		Rates: domain.DefaultRewardPolicy().BenefitRateFor(domain.TierExpert),
	}}, &settlementServiceStub{})

	rec := httptest.NewRecorder()
	handler.Calculate(rec, httptest.NewRequest(http.MethodGet, "/benefits?token=dXNlci0x", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBenefitHandler_Calculate_SiblingsDown(t *testing.T) {
	handler := NewBenefitHandler(&benefitServiceStub{err: domain.ErrBackendUnavailable}, &settlementServiceStub{})

	rec := httptest.NewRecorder()
	handler.Calculate(rec, httptest.NewRequest(http.MethodGet, "/benefits?token=dXNlci0x", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Body.String() == "" || !json.Valid(rec.Body.Bytes()) {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
}

func TestBenefitHandler_SettlementRuns(t *testing.T) {
	transferID := "tx-9"
	settlement := &settlementServiceStub{runs: []*domain.SettlementRun{{
		RunDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		DirectiveID: "sch-1",
		Status:      domain.RunStatusSettled,
		TransferID:  &transferID,
	}}}
	handler := NewBenefitHandler(&benefitServiceStub{}, settlement)

	rec := httptest.NewRecorder()
	handler.SettlementRuns(rec, httptest.NewRequest(http.MethodGet, "/settlement-runs?date=2026-03-15", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if settlement.date.Day() != 15 {
		t.Fatalf("expected the requested date, got %v", settlement.date)
	}

	rec = httptest.NewRecorder()
	handler.SettlementRuns(rec, httptest.NewRequest(http.MethodGet, "/settlement-runs?date=15/03/2026", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", rec.Code)
	}
}
