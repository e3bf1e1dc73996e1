package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/google/uuid"
)

// Result is what a caller learns after a vote.
type Result struct {
	Tallies    domain.Tallies
	State      domain.VoteState
	Transition domain.Transition
}

// Applier orchestrates one vote request against a VoteStore.
type Applier struct {
	store domain.VoteStore
}

func NewApplier(store domain.VoteStore) *Applier {
	return &Applier{store: store}
}

// ApplyVote reads the caller's state, decides the transition and issues a
// single conditional update. A missing item on the read is
// domain.ErrItemNotFound; an item that disappears between the read and the
// update is a concurrent structural change and reported as
// domain.ErrVoteConflict. Errors are wrapped and match with errors.Is.
func (a *Applier) ApplyVote(ctx context.Context, itemID uuid.UUID, userID string, intent domain.VoteIntent) (*Result, error) {
	current, tallies, err := a.store.VoteState(ctx, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read vote state: %w", err)
	}

	t := Decide(current, intent)
	if t.IsNoop() {
		slog.DebugContext(ctx, "Vote is a no-op", "item_id", itemID, "user_id", userID, "state", current.String())
		return &Result{Tallies: *tallies, State: current, Transition: t}, nil
	}

	updated, err := a.store.ApplyTransition(ctx, itemID, userID, t)
	if errors.Is(err, domain.ErrItemNotFound) {
		err = fmt.Errorf("%w: item removed during vote", domain.ErrVoteConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply vote transition %s->%s: %w", t.From, t.To, err)
	}

	return &Result{Tallies: *updated, State: t.To, Transition: t}, nil
}
