package chain

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/store"
)

// HideChainBackward hides startID for viewerID and then every answer before
// it in its chain. Hiding is idempotent. It returns how many answers the walk
// covered. Run it on a transaction handle so a failure part way through
// leaves nothing hidden.
func (e *Engine) HideChainBackward(ctx context.Context, q store.Queries, viewerID, startID uuid.UUID) (int, error) {
	cur, err := q.GetAnswer(ctx, startID)
	if err != nil {
		return 0, err
	}

	visited := map[uuid.UUID]struct{}{}
	for {
		if _, seen := visited[cur.ID]; seen {
			return 0, fmt.Errorf("chain behind %s revisits answer %s: %w", startID, cur.ID, apperr.ErrIntegrity)
		}
		if len(visited) >= e.maxLength {
			return 0, fmt.Errorf("chain behind %s exceeds %d answers: %w", startID, e.maxLength, apperr.ErrIntegrity)
		}
		visited[cur.ID] = struct{}{}

		if err := q.HideAnswer(ctx, viewerID, cur.ID); err != nil {
			return 0, err
		}

		if cur.PreviousAnswerID == nil {
			return len(visited), nil
		}
		cur, err = q.GetAnswer(ctx, *cur.PreviousAnswerID)
		if err != nil {
			return 0, err
		}
	}
}
