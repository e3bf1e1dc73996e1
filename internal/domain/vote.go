package domain

import (
	"context"

	"github.com/google/uuid"
)

// VoteState is the recorded relationship of one user to one item.
type VoteState int

const (
	VoteNeutral VoteState = iota
	VoteLiked
	VoteDisliked
)

func (s VoteState) String() string {
	switch s {
	case VoteNeutral:
		return "neutral"
	case VoteLiked:
		return "liked"
	case VoteDisliked:
		return "disliked"
	default:
		return "unknown"
	}
}

// VoteIntent is what the caller asks for.
type VoteIntent int

const (
	IntentRetract VoteIntent = iota
	IntentLike
	IntentDislike
)

func (i VoteIntent) String() string {
	switch i {
	case IntentRetract:
		return "retract"
	case IntentLike:
		return "like"
	case IntentDislike:
		return "dislike"
	default:
		return "unknown"
	}
}

// ParseVoteIntent maps the wire value (1, -1, 0) to an intent.
func ParseVoteIntent(v int) (VoteIntent, error) {
	switch v {
	case 1:
		return IntentLike, nil
	case -1:
		return IntentDislike, nil
	case 0:
		return IntentRetract, nil
	default:
		return 0, ErrInvalidVote
	}
}

// Transition is the outcome of one vote decision.
type Transition struct {
	From         VoteState
	To           VoteState
	LikeDelta    int
	DislikeDelta int
}

// IsNoop reports whether applying the transition changes nothing.
func (t Transition) IsNoop() bool {
	return t.From == t.To && t.LikeDelta == 0 && t.DislikeDelta == 0
}

// VoteStore is the storage contract of the vote applier.
type VoteStore interface {
	// VoteState returns the user's current state and the item's tallies, or ErrItemNotFound.
	VoteState(ctx context.Context, itemID uuid.UUID, userID string) (VoteState, *Tallies, error)

	// ApplyTransition atomically moves userID from t.From to t.To and applies
	// both deltas, only if the item exists and the user's state is still t.From.
	// Returns ErrItemNotFound or ErrVoteConflict when the precondition fails.
	ApplyTransition(ctx context.Context, itemID uuid.UUID, userID string, t Transition) (*Tallies, error)
}
