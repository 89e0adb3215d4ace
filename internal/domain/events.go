package domain

import "time"

// Event types
const (
	EventTypeAccountInitialized = "account.initialized"
	EventTypeFunded             = "ledger.funded"
	EventTypeTransferred        = "ledger.transferred"
	EventTypeProjectionFailed   = "projection.failed"
)

// LedgerEvent is published after a ledger operation completes or fails.
type LedgerEvent struct {
	Type       string    `json:"type"`
	TxID       string    `json:"txid,omitempty"`
	Owner      string    `json:"owner,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Asset      string    `json:"asset"`
	Amount     string    `json:"amount,omitempty"`
	PendingIDs []string  `json:"pending_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
