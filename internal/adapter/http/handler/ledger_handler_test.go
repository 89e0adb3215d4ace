package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/assetledger/internal/adapter/http/dto"
	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

func TestLedgerHandler_Fund_Success(t *testing.T) {
	var captured usecase.FundInput
	h := NewLedgerHandler(&ledgerServiceStub{
		fundFn: func(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error) {
			captured = input
			return []*domain.Transaction{
				{ID: "leg-1", TxID: "tx-1", Owner: "treasury", Account: domain.AccountEquity, EntrySide: domain.Credit, Amount: input.Amount},
				{ID: "leg-2", TxID: "tx-1", Owner: input.Owner, Account: domain.AccountAsset, EntrySide: domain.Debit, Amount: input.Amount},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/fund", strings.NewReader(`{"asset":"GEM","to":"alice","amount":100}`))
	req.Header.Set(IdempotencyKeyHeader, "fund-key")
	rec := httptest.NewRecorder()

	h.Fund(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Owner != "alice" || captured.Asset != "GEM" || !captured.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if captured.IdempotencyKey != "fund-key" {
		t.Fatalf("expected idempotency key to be forwarded, got %q", captured.IdempotencyKey)
	}

	var legs []dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &legs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
}

func TestLedgerHandler_Fund_InvalidAmount(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		fundFn: func(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error) {
			return nil, domain.ErrInvalidAmount
		},
	})

	rec := httptest.NewRecorder()
	h.Fund(rec, httptest.NewRequest(http.MethodPost, "/fund", strings.NewReader(`{"asset":"GEM","to":"alice","amount":0}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Fund_MalformedAmount(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		fundFn: func(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Fund(rec, httptest.NewRequest(http.MethodPost, "/fund", strings.NewReader(`{"asset":"GEM","to":"alice","amount":"ten"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_RejectsAmountsBeyondScale(t *testing.T) {
	for _, amount := range []string{`"0.0000000000000000001"`, `"1e-5000000"`, `"1e-1000000000"`} {
		t.Run(amount, func(t *testing.T) {
			h := NewLedgerHandler(&ledgerServiceStub{
				fundFn: func(ctx context.Context, input usecase.FundInput) ([]*domain.Transaction, error) {
					t.Fatal("service should not be called")
					return nil, nil
				},
				transferFn: func(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error) {
					t.Fatal("service should not be called")
					return nil, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Fund(rec, httptest.NewRequest(http.MethodPost, "/fund",
				strings.NewReader(`{"asset":"GEM","to":"alice","amount":`+amount+`}`)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("fund: expected 400, got %d", rec.Code)
			}
			if rec.Body.Len() > 1024 {
				t.Fatalf("fund: unexpectedly large body (%d bytes)", rec.Body.Len())
			}

			rec = httptest.NewRecorder()
			h.Transfer(rec, httptest.NewRequest(http.MethodPost, "/transfer",
				strings.NewReader(`{"asset":"GEM","from":"alice","to":"bob","amount":`+amount+`}`)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("transfer: expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestLedgerHandler_Transfer_Success(t *testing.T) {
	var captured usecase.TransferInput
	h := NewLedgerHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error) {
			captured = input
			return make([]*domain.Transaction, 0, 4), nil
		},
	})

	body, _ := json.Marshal(dto.TransferRequest{
		Asset:  "GEM",
		From:   "alice",
		To:     "bob",
		Amount: decimal.NewFromInt(30),
	})

	rec := httptest.NewRecorder()
	h.Transfer(rec, httptest.NewRequest(http.MethodPost, "/transfer", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.From != "alice" || captured.To != "bob" || !captured.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected input: %+v", captured)
	}
}

func TestLedgerHandler_Transfer_PartialProjection(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error) {
			return nil, &domain.PartialProjectionError{
				TxID:    "tx-7",
				Pending: []*domain.Transaction{{ID: "leg-3"}},
				Err:     domain.StorageError("increment", context.DeadlineExceeded),
			}
		},
	})

	rec := httptest.NewRecorder()
	h.Transfer(rec, httptest.NewRequest(http.MethodPost, "/transfer",
		strings.NewReader(`{"asset":"GEM","from":"alice","to":"bob","amount":5}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TxID != "tx-7" || len(resp.PendingIDs) != 1 || resp.PendingIDs[0] != "leg-3" {
		t.Fatalf("unexpected error response: %+v", resp)
	}
}

func TestLedgerHandler_Transfer_SameOwner(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) ([]*domain.Transaction, error) {
			return nil, domain.ErrSameOwner
		},
	})

	rec := httptest.NewRecorder()
	h.Transfer(rec, httptest.NewRequest(http.MethodPost, "/transfer",
		strings.NewReader(`{"asset":"GEM","from":"alice","to":"alice","amount":5}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
