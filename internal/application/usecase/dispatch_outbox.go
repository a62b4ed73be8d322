package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/pkg/events"
)

const defaultOutboxBatch = 100

// DispatchOutboxUseCase relays unpublished outbox entries to the event
// publisher and marks them published.
type DispatchOutboxUseCase struct {
	outbox    events.OutboxRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewDispatchOutboxUseCase wires dependencies.
func NewDispatchOutboxUseCase(outbox events.OutboxRepository, publisher port.EventPublisher, logger *slog.Logger) *DispatchOutboxUseCase {
	return &DispatchOutboxUseCase{outbox: outbox, publisher: publisher, logger: logger}
}

// Execute runs one dispatch pass. Entries are marked published only after
// the publisher accepted them, so delivery is at least once.
func (uc *DispatchOutboxUseCase) Execute(
	ctx context.Context,
	req dto.DispatchOutboxRequest,
) (dto.DispatchOutboxResponse, error) {
	batch := req.BatchSize
	if batch <= 0 {
		batch = defaultOutboxBatch
	}

	entries, err := uc.outbox.FetchUnpublished(ctx, batch)
	if err != nil {
		return dto.DispatchOutboxResponse{}, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return dto.DispatchOutboxResponse{}, nil
	}

	if err := uc.publisher.Publish(ctx, entries...); err != nil {
		return dto.DispatchOutboxResponse{}, fmt.Errorf("publish outbox entries: %w", err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := uc.outbox.MarkPublished(ctx, ids); err != nil {
		return dto.DispatchOutboxResponse{}, fmt.Errorf("mark outbox published: %w", err)
	}

	uc.logger.DebugContext(ctx, "outbox dispatched", "count", len(entries))
	return dto.DispatchOutboxResponse{Published: len(entries)}, nil
}
