package rating

import "github.com/csentein/P6-Sentein-Clement/internal/domain"

// Decide maps the current per-user state and the requested intent to the new
// state and the tally deltas. Repeating a vote is a no-op, switching moves
// the user between sets in one step.
func Decide(current domain.VoteState, intent domain.VoteIntent) domain.Transition {
	t := domain.Transition{From: current, To: current}

	switch intent {
	case domain.IntentLike:
		t.To = domain.VoteLiked
	case domain.IntentDislike:
		t.To = domain.VoteDisliked
	case domain.IntentRetract:
		t.To = domain.VoteNeutral
	}

	if t.From == t.To {
		return t
	}

	switch t.From {
	case domain.VoteLiked:
		t.LikeDelta--
	case domain.VoteDisliked:
		t.DislikeDelta--
	}
	switch t.To {
	case domain.VoteLiked:
		t.LikeDelta++
	case domain.VoteDisliked:
		t.DislikeDelta++
	}

	return t
}

// Apply runs t against in-memory tallies. Stores without a native conditional
// update use it under their own lock; callers must have checked t.From.
func Apply(tallies domain.Tallies, userID string, t domain.Transition) domain.Tallies {
	out := domain.Tallies{
		Likes:         tallies.Likes + t.LikeDelta,
		Dislikes:      tallies.Dislikes + t.DislikeDelta,
		UsersLiked:    without(tallies.UsersLiked, userID),
		UsersDisliked: without(tallies.UsersDisliked, userID),
	}

	switch t.To {
	case domain.VoteLiked:
		out.UsersLiked = append(out.UsersLiked, userID)
	case domain.VoteDisliked:
		out.UsersDisliked = append(out.UsersDisliked, userID)
	}

	return out
}

func without(ids []string, userID string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
