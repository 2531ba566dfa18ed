package postgres

import (
	"context"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEQUENCE GENERATOR IMPLEMENTATION
// The counter lives in the serial_counters table, one row per (category,
// bucket). The upsert increments it atomically: concurrent callers serialize
// on the row lock and each sees a distinct count, so duplicates are
// impossible. Because the increment joins the enclosing transaction, a
// rolled-back transition un-consumes its number and the committed sequence
// stays gap-free.
// ══════════════════════════════════════════════════════════════════════════════

// SequenceGenerator implements sequence.Generator for PostgreSQL.
type SequenceGenerator struct {
	db Querier
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(conn *Connection) *SequenceGenerator {
	return &SequenceGenerator{db: conn}
}

// withQuerier returns a copy of the generator bound to the given querier.
func (g *SequenceGenerator) withQuerier(q Querier) *SequenceGenerator {
	return &SequenceGenerator{db: q}
}

// Next returns the next identifier in the (category, bucket) counter.
func (g *SequenceGenerator) Next(ctx context.Context, category sequence.Category, bucket sequence.Bucket) (sequence.Identifier, error) {
	if err := sequence.ValidateRequest(category, bucket); err != nil {
		return "", err
	}

	query := `
		INSERT INTO serial_counters (category, bucket, last_seq, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (category, bucket)
		DO UPDATE SET last_seq = serial_counters.last_seq + 1, updated_at = NOW()
		RETURNING last_seq
	`

	var seq int
	err := g.db.QueryRow(ctx, query, string(category), int(bucket)).Scan(&seq)
	if err != nil {
		return "", shared.WrapError("sequence", "Next", shared.ErrGenerationFailed,
			"failed to advance serial counter", err)
	}

	return sequence.Format(category, bucket, seq), nil
}
