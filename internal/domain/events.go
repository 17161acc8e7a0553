package domain

import "time"

// Event types
const (
	EventTypeAccountEnrolled     = "account.enrolled"
	EventTypeConversionRequested = "conversion.requested"
	EventTypeTransferCompleted   = "transfer.completed"
	EventTypeTransferCompensated = "transfer.compensated"
	EventTypeTierChanged         = "tier.changed"
)

// Aggregate types
const (
	AggregateTypeAccount  = "account"
	AggregateTypeTransfer = "transfer"
	AggregateTypeProfile  = "profile"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ConversionRequestedEvent asks a sibling service to credit converted value.
type ConversionRequestedEvent struct {
	EntryID      string `json:"entry_id"`
	AccountID    string `json:"account_id"`
	OwnerID      string `json:"owner_id"`
	TargetSystem string `json:"target_system"`
	Amount       int64  `json:"amount"`
	OccurredAt   string `json:"occurred_at"`
}

// TransferCompensatedEvent records a transfer whose second leg failed.
type TransferCompensatedEvent struct {
	TransferID        string `json:"transfer_id"`
	FromAccountID     string `json:"from_account_id"`
	ToAccountID       string `json:"to_account_id"`
	CompensationEntry string `json:"compensation_entry_id"`
	Amount            int64  `json:"amount"`
	Cause             string `json:"cause"`
}

// TierChangedEvent payload
type TierChangedEvent struct {
	OwnerID        string `json:"owner_id"`
	PreviousTier   string `json:"previous_tier"`
	CurrentTier    string `json:"current_tier"`
	LifetimeEarned int64  `json:"lifetime_earned"`
}
