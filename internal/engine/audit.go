package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditEvent describes one committed engine mutation.
type AuditEvent struct {
	Action      string
	BatchID     *uuid.UUID
	PledgeID    *string
	PaymentID   *string
	CellIDs     []string
	AreaM2      float64
	AmountPence int64
}

// AuditSink receives engine events after their transaction committed. The
// surrounding application supplies its own sink; the engine ships a
// log-backed default.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

// LogSink writes audit events to a zerolog logger.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Record(_ context.Context, event AuditEvent) {
	ev := s.Log.Info().Str("action", event.Action)
	if event.BatchID != nil {
		ev = ev.Str("batch_id", event.BatchID.String())
	}
	if event.PledgeID != nil {
		ev = ev.Str("pledge_id", *event.PledgeID)
	}
	if event.PaymentID != nil {
		ev = ev.Str("payment_id", *event.PaymentID)
	}
	if len(event.CellIDs) > 0 {
		ev = ev.Strs("cell_ids", event.CellIDs)
	}
	if event.AreaM2 > 0 {
		ev = ev.Float64("area_m2", event.AreaM2)
	}
	if event.AmountPence > 0 {
		ev = ev.Int64("amount_pence", event.AmountPence)
	}
	ev.Msg("grid audit")
}
