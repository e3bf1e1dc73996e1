package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/retry"
	"github.com/csentein/P6-Sentein-Clement/internal/rating"
	"github.com/google/uuid"
)

func isVoteConflict(err error) bool {
	return errors.Is(err, domain.ErrVoteConflict)
}

func (s *Service) onVoteRetry(attempt int, err error, _ time.Duration) {
	s.voteMetrics.ConflictRetries.Inc()
	slog.Debug("Retrying vote after concurrent change", "attempt", attempt, "error", err)
}

// Vote applies the user's intent to the item. A concurrent change to the
// same user's vote is retried once; a second conflict is returned as
// domain.ErrVoteConflict.
func (s *Service) Vote(ctx context.Context, itemID uuid.UUID, userID string, intent domain.VoteIntent) (*rating.Result, error) {
	start := s.clock.Now()
	s.voteMetrics.VotesByIntent.WithLabelValues(intent.String()).Inc()

	res, err := retry.Do(ctx, s.voteRetry, isVoteConflict, func(ctx context.Context) (*rating.Result, error) {
		return s.applier.ApplyVote(ctx, itemID, userID, intent)
	})

	s.voteMetrics.ProcessingDuration.Observe(s.clock.Since(start).Seconds())
	s.voteMetrics.VotesProcessed.WithLabelValues(voteResult(res, err)).Inc()

	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Vote applied", "item_id", itemID, "user_id", userID,
		"from", res.Transition.From.String(), "to", res.Transition.To.String())
	return res, nil
}

func voteResult(res *rating.Result, err error) string {
	switch {
	case err == nil && res.Transition.IsNoop():
		return metrics.VoteNoop
	case err == nil:
		return metrics.VoteApplied
	case errors.Is(err, domain.ErrVoteConflict):
		return metrics.VoteConflict
	case errors.Is(err, domain.ErrItemNotFound):
		return metrics.VoteNotFound
	default:
		return metrics.VoteError
	}
}
