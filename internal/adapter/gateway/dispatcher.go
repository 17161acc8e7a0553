package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/adapter/http/dto"
	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// ErrUnknownTarget is returned for conversions to a service with no client.
var ErrUnknownTarget = errors.New("no client for conversion target")

// EventDeliverer posts inbound credit events to a sibling service.
//
//go:generate mockgen -source=dispatcher.go -destination=mock_deliverer_test.go -package=gateway
type EventDeliverer interface {
	DeliverEvent(ctx context.Context, event dto.InboundEventRequest) (*dto.IngestResponse, error)
}

// Dispatcher publishes outbox events to sibling services. Conversions are
// delivered as MONEY credits on the target; other events are only logged.
type Dispatcher struct {
	targets map[string]EventDeliverer
	codec   usecase.TokenCodec
	logger  zerolog.Logger
}

// NewDispatcher creates a Dispatcher. targets maps conversion target
// system names to their clients.
func NewDispatcher(targets map[string]EventDeliverer, codec usecase.TokenCodec, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		targets: targets,
		codec:   codec,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Publish implements eventpublisher.Publisher.
func (d *Dispatcher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if event.EventType != domain.EventTypeConversionRequested {
		d.logger.Info().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("aggregate_id", event.AggregateID).
			Msg("event published")
		return nil
	}

	var conversion domain.ConversionRequestedEvent
	if err := decodePayload(event.Payload, &conversion); err != nil {
		return fmt.Errorf("decode conversion %s: %w", event.ID, err)
	}

	target, ok := d.targets[conversion.TargetSystem]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, conversion.TargetSystem)
	}

	token, err := d.codec.Encode(conversion.OwnerID)
	if err != nil {
		return fmt.Errorf("encode owner for conversion %s: %w", event.ID, err)
	}

	req := dto.InboundEventRequest{
		ExternalRef:          "conversion:" + conversion.EntryID,
		AccountOwnerIdentity: token,
		Category:             domain.CategoryMoneyConversion,
		LedgerDomain:         string(domain.LedgerDomainMoney),
		Amount:               conversion.Amount,
	}
	if at, err := time.Parse(time.RFC3339Nano, conversion.OccurredAt); err == nil {
		req.OccurredAt = &at
	}

	resp, err := target.DeliverEvent(ctx, req)
	if err != nil {
		return err
	}

	d.logger.Info().
		Str("event_id", event.ID).
		Str("entry_id", conversion.EntryID).
		Str("target_system", conversion.TargetSystem).
		Int64("amount", conversion.Amount).
		Bool("accepted", resp.Accepted).
		Msg("conversion delivered")
	return nil
}

// decodePayload converts a generic payload into its typed event. Payloads
// read back from the store carry JSON numbers, so this goes through JSON.
func decodePayload(payload map[string]any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
