package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
)

func TestTransactionHandler_List(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  usecase.ListTransactionsInput
	}{
		{
			name:  "defaults asset and account",
			query: "uid=alice",
			want:  usecase.ListTransactionsInput{Owner: "alice", Asset: "GEM", Account: domain.AccountAsset, Limit: domain.DefaultHistoryLimit},
		},
		{
			name:  "explicit parameters",
			query: "uid=bob&asset=COIN&account=EQUITY&limit=3",
			want:  usecase.ListTransactionsInput{Owner: "bob", Asset: "COIN", Account: domain.AccountEquity, Limit: 3},
		},
		{
			name:  "lowercase account",
			query: "uid=bob&account=equity",
			want:  usecase.ListTransactionsInput{Owner: "bob", Asset: "GEM", Account: domain.AccountEquity, Limit: domain.DefaultHistoryLimit},
		},
		{
			name:  "non-numeric limit falls back",
			query: "uid=bob&limit=lots",
			want:  usecase.ListTransactionsInput{Owner: "bob", Asset: "GEM", Account: domain.AccountAsset, Limit: domain.DefaultHistoryLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.ListTransactionsInput
			h := NewTransactionHandler(&historyServiceStub{
				listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
					captured = input
					return []*domain.Transaction{}, nil
				},
			}, "GEM")

			rec := httptest.NewRecorder()
			h.List(rec, httptest.NewRequest(http.MethodGet, "/transactions?"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if captured != tt.want {
				t.Fatalf("input = %+v, want %+v", captured, tt.want)
			}
			if body := rec.Body.String(); body != "[]\n" {
				t.Fatalf("expected empty JSON array, got %q", body)
			}
		})
	}
}

func TestTransactionHandler_List_ValidationError(t *testing.T) {
	h := NewTransactionHandler(&historyServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			return nil, domain.ErrMissingField
		},
	}, "GEM")

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_List_InvalidAccount(t *testing.T) {
	h := NewTransactionHandler(&historyServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, "GEM")

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/transactions?uid=bob&account=LIABILITY", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
