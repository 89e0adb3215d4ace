package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestPartialProjectionError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&PartialProjectionError{
		TxID:    "tx-1",
		Applied: []*Transaction{{ID: "leg-1"}},
		Pending: []*Transaction{{ID: "leg-2"}, {ID: "leg-3"}},
		Err:     cause,
	})

	if !errors.Is(err, ErrPartialProjection) {
		t.Fatalf("expected ErrPartialProjection, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected underlying cause to be reachable")
	}

	var ppe *PartialProjectionError
	if !errors.As(err, &ppe) {
		t.Fatalf("expected errors.As to find PartialProjectionError")
	}
	if got := strings.Join(ppe.PendingIDs(), ","); got != "leg-2,leg-3" {
		t.Fatalf("unexpected pending ids %q", got)
	}
	if !strings.Contains(err.Error(), "tx-1") {
		t.Fatalf("expected txid in message, got %q", err.Error())
	}
}

func TestStorageErrorIsRetryable(t *testing.T) {
	err := StorageError("batch append", errors.New("timeout"))

	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if !IsRetryable(err) {
		t.Fatalf("expected storage error to be retryable")
	}
	if IsRetryable(ErrInvalidAmount) {
		t.Fatalf("expected validation error to be non-retryable")
	}
	if StorageError("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
