package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/usecase"
	"github.com/iho/assetledger/internal/usecase/mocks"
)

func TestAccountUseCase_Init(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)

	records, err := f.accounts.Init(ctx, "u1", "GEM")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].EntrySide != domain.Debit || records[1].EntrySide != domain.Credit {
		t.Errorf("expected DR then CR, got %s then %s", records[0].EntrySide, records[1].EntrySide)
	}
	for _, r := range records {
		if r.Account != domain.AccountAsset || !r.Amount.IsZero() {
			t.Errorf("expected zero ASSET record, got %+v", r)
		}
	}

	bal, err := f.balance.GetBalance(ctx, "u1", "GEM", domain.AccountAsset)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Net == nil || !bal.Net.IsZero() {
		t.Errorf("expected net 0, got %v", bal.Net)
	}
}

func TestAccountUseCase_InitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)

	if _, err := f.accounts.Init(ctx, "u1", "GEM"); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := f.ledger.Fund(ctx, usecase.FundInput{Owner: "u1", Asset: "GEM", Amount: d(25)}); err != nil {
		t.Fatalf("Fund: %v", err)
	}

	records, err := f.accounts.Init(ctx, "u1", "GEM")
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if !records[0].Amount.Equal(d(25)) {
		t.Fatalf("expected ASSET/DR to keep 25, got %s", records[0].Amount)
	}

	bal, err := f.balance.GetBalance(ctx, "u1", "GEM", domain.AccountAsset)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if bal.Net == nil || !bal.Net.Equal(d(25)) {
		t.Errorf("expected net 25, got %v", bal.Net)
	}
}

func TestAccountUseCase_InitValidation(t *testing.T) {
	f := newLedgerFixture(t)

	if _, err := f.accounts.Init(context.Background(), "", "GEM"); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected missing field, got %v", err)
	}
	if _, err := f.accounts.Init(context.Background(), "u1", " "); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected missing field, got %v", err)
	}
}

func TestAccountUseCase_InitStorageFailure(t *testing.T) {
	store := &mocks.BalanceStoreStub{
		ConditionalCreateFunc: func(context.Context, []*domain.BalanceRecord) ([]bool, error) {
			return nil, domain.StorageError("create balances", errors.New("unavailable"))
		},
	}

	_, err := usecase.NewAccountUseCase(store).Init(context.Background(), "u1", "GEM")
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}

func TestAccountUseCase_InitPublishesOnlyWhenCreated(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockEventPublisher(ctrl)

	f := newLedgerFixture(t, usecase.WithEventPublisher(publisher))

	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *domain.LedgerEvent) error {
		if e.Type != domain.EventTypeAccountInitialized || e.Owner != "u1" {
			t.Errorf("unexpected event %+v", e)
		}
		return nil
	}).Times(1)

	for i := 0; i < 3; i++ {
		if _, err := f.accounts.Init(ctx, "u1", "GEM"); err != nil {
			t.Fatalf("Init: %v", err)
		}
	}
}
