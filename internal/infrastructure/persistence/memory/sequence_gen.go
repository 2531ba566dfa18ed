package memory

import (
	"context"

	"github.com/stvt-hub/stvt-training-hub/internal/domain/sequence"
)

// sequenceGen implements sequence.Generator on the store's counter map.
// Increments happen under the store lock, so concurrent callers always get
// distinct numbers. A rollback of the enclosing transaction restores the
// counter snapshot, keeping the committed sequence gap-free.
type sequenceGen struct {
	s      *Store
	locked bool
}

func (g *sequenceGen) lock() func() {
	if g.locked {
		return func() {}
	}
	g.s.mu.Lock()
	return g.s.mu.Unlock
}

// Next returns the next identifier in the (category, bucket) counter.
func (g *sequenceGen) Next(ctx context.Context, category sequence.Category, bucket sequence.Bucket) (sequence.Identifier, error) {
	if err := sequence.ValidateRequest(category, bucket); err != nil {
		return "", err
	}

	defer g.lock()()

	key := counterKey{category: category, bucket: bucket}
	g.s.counters[key]++
	return sequence.Format(category, bucket, g.s.counters[key]), nil
}
