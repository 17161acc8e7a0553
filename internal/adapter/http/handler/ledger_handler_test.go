package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

type ledgerQueryStub struct {
	query *usecase.LedgerQuery
	err   error
}

func (s *ledgerQueryStub) QueryLedger(ctx context.Context, token string) (*usecase.LedgerQuery, error) {
	return s.query, s.err
}

type accountListerStub struct {
	accounts []*domain.Account
	err      error
}

func (s *accountListerStub) ListByToken(ctx context.Context, token string) ([]*domain.Account, error) {
	return s.accounts, s.err
}

func TestLedgerHandler_Query(t *testing.T) {
	handler := NewLedgerHandler(&ledgerQueryStub{query: &usecase.LedgerQuery{
		Balance: 420,
		Status: domain.TierStatus{
			Tier:             domain.TierIntermediate,
			NextTier:         domain.TierExpert,
			Level:            2,
			LifetimeEarned:   7500,
			AmountToNextTier: 2500,
			ProgressFraction: 0.5,
		},
	}}, &accountListerStub{}, "green")

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/ledger/query", strings.NewReader(`{"accountOwnerIdentity":"dXNlci0x"}`))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.LedgerQueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CurrentTier != "INTERMEDIATE" || resp.CurrentBalance != 420 || resp.AmountToNextTier != 2500 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_Query_NotEnrolled(t *testing.T) {
	handler := NewLedgerHandler(&ledgerQueryStub{err: domain.ErrAccountNotFound}, &accountListerStub{}, "green")

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/ledger/query", strings.NewReader(`{"accountOwnerIdentity":"dXNlci0x"}`))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_Accounts(t *testing.T) {
	handler := NewLedgerHandler(&ledgerQueryStub{}, &accountListerStub{accounts: []*domain.Account{
		{ID: "seed-1", Domain: domain.LedgerDomainSeed, Status: domain.AccountStatusActive, Balance: 12},
	}}, "green")

	rec := httptest.NewRecorder()
	handler.Accounts(rec, httptest.NewRequest(http.MethodGet, "/internal/v1/accounts?token=dXNlci0x", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AccountSummariesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].Service != "green" || resp.Accounts[0].Balance != 12 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
