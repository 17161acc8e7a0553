package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
	return s.transferFn(ctx, input)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	var captured usecase.TransferInput
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
			captured = input
			return &usecase.TransferResult{TransferID: "tx-1", FromBalance: 70, ToBalance: 30}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        30,
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.FromAccountID != "acc-1" || captured.ToAccountID != "acc-2" || captured.Amount != 30 {
		t.Fatalf("unexpected input passed to use case: %+v", captured)
	}
	if captured.Category != domain.CategoryTransfer {
		t.Fatalf("expected default category, got %q", captured.Category)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TransferID != "tx-1" || resp.FromBalance != 70 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransferHandler_Create_Compensated(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
			return &usecase.TransferResult{
				TransferID:        "tx-2",
				FromBalance:       100,
				Compensated:       true,
				CompensationEntry: &domain.LedgerEntry{ID: "comp-1", BalanceAfter: 100},
			}, fmt.Errorf("%w: destination closed", domain.ErrTransferCompensated)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers",
		bytes.NewBufferString(`{"fromAccountId":"acc-1","toAccountId":"acc-2","amount":30}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp dto.CompensatedTransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != CodeTransferCompensated || resp.Transfer == nil || !resp.Transfer.Compensated {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Transfer.FromBalance != 100 || resp.Transfer.CompensationEntry == nil {
		t.Fatalf("expected restored source balance in response: %+v", resp.Transfer)
	}
}

func TestTransferHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{"missing destination", domain.ErrAccountNotFound, http.StatusNotFound},
		{"store down", domain.ErrBackendUnavailable, http.StatusServiceUnavailable},
		{"compensation failed", domain.ErrCompensationFailed, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				transferFn: func(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transfers",
				bytes.NewBufferString(`{"fromAccountId":"acc-1","toAccountId":"acc-2","amount":30}`))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestTransferHandler_Create_InvalidBody(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
