package httpserver

import (
	"net/http"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	apperrors "github.com/csentein/P6-Sentein-Clement/internal/platform/errors"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/logging"
	"github.com/csentein/P6-Sentein-Clement/internal/rating"
	"github.com/labstack/echo/v4"
)

// votePayload accepts the intent as `vote`, or as `like` for older clients.
type votePayload struct {
	UserID string `json:"userId"`
	Vote   *int   `json:"vote"`
	Like   *int   `json:"like"`
}

func (p votePayload) intent() (domain.VoteIntent, error) {
	value := p.Vote
	if value == nil {
		value = p.Like
	}
	if value == nil {
		return 0, apperrors.ValidationError("missing vote value")
	}
	return domain.ParseVoteIntent(*value)
}

type voteResponse struct {
	Message string `json:"message"`
	domain.Tallies
}

func voteMessage(res *rating.Result) string {
	if res.Transition.IsNoop() {
		return "vote unchanged"
	}
	switch res.Transition.To {
	case domain.VoteLiked:
		return "like recorded"
	case domain.VoteDisliked:
		return "dislike recorded"
	default:
		return "vote removed"
	}
}

func (s *Server) handleVote(c echo.Context) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return err
	}

	var payload votePayload
	if err := c.Bind(&payload); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := s.checkClaim(c, payload.UserID); err != nil {
		return err
	}
	intent, err := payload.intent()
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	res, err := s.app.Vote(ctx, itemID, subjectFrom(c), intent)
	if err != nil {
		return err
	}

	logging.WithItem(itemID.String()).DebugContext(ctx, "Vote handled", "intent", intent, "state", res.State)
	return c.JSON(http.StatusOK, voteResponse{Message: voteMessage(res), Tallies: res.Tallies})
}
