package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emilianohg/dailyhill/internal/models"
)

type RecategorizeResult struct {
	Scanned int
	Updated int
}

// Recategorize re-derives the classification of every stored row from its
// raw fields and writes back the rows whose labels changed. booking_id is
// never rewritten, so the dedup key of existing rows stays stable.
func (in *Ingester) Recategorize(ctx context.Context) (*RecategorizeResult, error) {
	stored, err := in.bookings.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	raws := make([]models.RawRecord, len(stored))
	for i := range stored {
		raws[i] = stored[i].RawRecord
	}

	derived, err := in.engine.CategorizeBatch(ctx, raws, in.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to categorize rows: %w", err)
	}

	var changed []models.Booking
	for i := range stored {
		if sameLabels(stored[i].Derived, derived[i]) {
			continue
		}
		b := stored[i]
		b.Derived = derived[i]
		changed = append(changed, b)
	}

	updated, err := in.bookings.UpdateDerived(ctx, changed)
	if err != nil {
		return nil, fmt.Errorf("failed to update bookings: %w", err)
	}

	in.logger.Info("recategorized bookings", zap.Int("scanned", len(stored)), zap.Int("updated", updated))
	return &RecategorizeResult{Scanned: len(stored), Updated: updated}, nil
}

// sameLabels compares the stored derived columns. TaskNameClean is not
// stored and is ignored.
func sameLabels(a, b models.Derived) bool {
	return a.Instructor == b.Instructor &&
		a.IsTeaching == b.IsTeaching &&
		a.AgeBand == b.AgeBand &&
		a.Level == b.Level &&
		a.TaskCategory == b.TaskCategory &&
		equalPtr(a.AgeInferred, b.AgeInferred) &&
		equalPtr(a.AbilityHint, b.AbilityHint)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
