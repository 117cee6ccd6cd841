package srs

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

// SelectDue builds a review queue of at most limit card IDs.
//
// States due at asOf come first, most overdue first. Cards the learner has
// never reviewed fill the remaining slots in the order given. A card appears
// at most once, and a card with a state is never treated as unreviewed.
// A non-positive limit yields an empty queue.
func SelectDue(
	states []*domain.CardReviewState,
	unreviewed []uuid.UUID,
	asOf time.Time,
	limit int,
) []uuid.UUID {
	if limit <= 0 {
		return []uuid.UUID{}
	}

	due := make([]*domain.CardReviewState, 0, len(states))
	known := make(map[uuid.UUID]struct{}, len(states))
	for _, s := range states {
		if s == nil {
			continue
		}
		known[s.CardID] = struct{}{}
		if s.IsDue(asOf) {
			due = append(due, s)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].CardID.String() < due[j].CardID.String()
	})

	queue := make([]uuid.UUID, 0, limit)
	for _, s := range due {
		if len(queue) == limit {
			return queue
		}
		queue = append(queue, s.CardID)
	}

	for _, id := range unreviewed {
		if len(queue) == limit {
			break
		}
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		queue = append(queue, id)
	}

	return queue
}
