package app

import (
	"github.com/csentein/P6-Sentein-Clement/internal/account"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/retry"
	"github.com/csentein/P6-Sentein-Clement/internal/rating"
	"github.com/jonboulle/clockwork"
)

// TokenIssuer signs a credential for a logged-in user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Dependencies wires the service. All fields are required.
type Dependencies struct {
	Items       domain.ItemRepository
	Accounts    domain.AccountRepository
	Images      domain.ImageStore
	Throttle    domain.LoginThrottle
	Hasher      account.Hasher
	Issuer      TokenIssuer
	Clock       clockwork.Clock
	VoteMetrics *metrics.VoteMetrics
	AuthMetrics *metrics.AuthMetrics
}

// Service is the application layer. It is the only component that references
// several domain components, and it orchestrates every use case.
type Service struct {
	items       domain.ItemRepository
	accounts    domain.AccountRepository
	images      domain.ImageStore
	throttle    domain.LoginThrottle
	hasher      account.Hasher
	issuer      TokenIssuer
	applier     *rating.Applier
	clock       clockwork.Clock
	voteRetry   retry.Policy
	voteMetrics *metrics.VoteMetrics
	authMetrics *metrics.AuthMetrics
}

// NewService creates the application layer service.
func NewService(deps Dependencies) *Service {
	s := &Service{
		items:       deps.Items,
		accounts:    deps.Accounts,
		images:      deps.Images,
		throttle:    deps.Throttle,
		hasher:      deps.Hasher,
		issuer:      deps.Issuer,
		applier:     rating.NewApplier(deps.Items),
		clock:       deps.Clock,
		voteMetrics: deps.VoteMetrics,
		authMetrics: deps.AuthMetrics,
	}
	s.voteRetry = retry.Policy{
		MaxAttempts: 2,
		OnRetry:     s.onVoteRetry,
	}
	return s
}
