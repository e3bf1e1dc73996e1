package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/account"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/memory"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockImageStore struct {
	saveFn   func(ctx context.Context, upload domain.Upload) (string, error)
	removeFn func(ctx context.Context, name string) error
	saved    []string
	removed  []string
}

func (m *mockImageStore) Save(ctx context.Context, upload domain.Upload) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, upload)
	}
	body, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s", upload.Filename, body)
	m.saved = append(m.saved, name)
	return name, nil
}

func (m *mockImageStore) Remove(ctx context.Context, name string) error {
	m.removed = append(m.removed, name)
	if m.removeFn != nil {
		return m.removeFn(ctx, name)
	}
	return nil
}

type mockIssuer struct {
	issueFn func(userID string) (string, error)
}

func (m *mockIssuer) Issue(userID string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID)
	}
	return "token-for-" + userID, nil
}

type mockThrottle struct {
	checkFn   func(ctx context.Context, key string) (time.Duration, error)
	failures  map[string]int
	resets    map[string]int
	recordErr error
}

func newMockThrottle() *mockThrottle {
	return &mockThrottle{failures: map[string]int{}, resets: map[string]int{}}
}

func (m *mockThrottle) Check(ctx context.Context, key string) (time.Duration, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, key)
	}
	return 0, nil
}

func (m *mockThrottle) RecordFailure(_ context.Context, key string) error {
	m.failures[key]++
	return m.recordErr
}

func (m *mockThrottle) Reset(_ context.Context, key string) error {
	m.resets[key]++
	return nil
}

// conflictingItems rejects the first `conflicts` vote writes as if another
// request had changed the caller's vote in between.
type conflictingItems struct {
	*memory.ItemStore
	conflicts int
	writes    int
}

func (c *conflictingItems) ApplyTransition(ctx context.Context, itemID uuid.UUID, userID string, t domain.Transition) (*domain.Tallies, error) {
	c.writes++
	if c.writes <= c.conflicts {
		return nil, domain.ErrVoteConflict
	}
	return c.ItemStore.ApplyTransition(ctx, itemID, userID, t)
}

type failingItems struct {
	*memory.ItemStore
	err error
}

func (f *failingItems) Create(context.Context, *domain.Item) error { return f.err }
func (f *failingItems) UpdateDetails(context.Context, uuid.UUID, domain.ItemDetails) (*domain.Item, error) {
	return nil, f.err
}

// --- Helpers ---

type testEnv struct {
	svc         *Service
	clock       *clockwork.FakeClock
	items       *memory.ItemStore
	accounts    *memory.AccountStore
	images      *mockImageStore
	throttle    *mockThrottle
	issuer      *mockIssuer
	voteMetrics *metrics.VoteMetrics
	authMetrics *metrics.AuthMetrics
}

type envOption func(*testEnv, *Dependencies)

func withItems(wrap func(*memory.ItemStore) domain.ItemRepository) envOption {
	return func(env *testEnv, deps *Dependencies) {
		deps.Items = wrap(env.items)
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClock()
	reg := prometheus.NewRegistry()
	env := &testEnv{
		clock:       clock,
		items:       memory.NewItemStore(clock),
		accounts:    memory.NewAccountStore(),
		images:      &mockImageStore{},
		throttle:    newMockThrottle(),
		issuer:      &mockIssuer{},
		voteMetrics: metrics.NewVoteMetrics(reg),
		authMetrics: metrics.NewAuthMetrics(reg),
	}
	deps := Dependencies{
		Items:       env.items,
		Accounts:    env.accounts,
		Images:      env.images,
		Throttle:    env.throttle,
		Hasher:      account.NewBcryptHasher(bcrypt.MinCost),
		Issuer:      env.issuer,
		Clock:       clock,
		VoteMetrics: env.voteMetrics,
		AuthMetrics: env.authMetrics,
	}
	for _, opt := range opts {
		opt(env, &deps)
	}
	env.svc = NewService(deps)
	return env
}

func validDetails() domain.ItemDetails {
	return domain.ItemDetails{
		Name:         "Sriracha",
		Manufacturer: "Huy Fong",
		Description:  "Garlic chili sauce",
		MainPepper:   "Red jalapeño",
		Heat:         4,
	}
}

func upload(name, body string) *domain.Upload {
	return &domain.Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader(body)}
}

func createItem(t *testing.T, env *testEnv, owner string) *domain.Item {
	t.Helper()
	item, err := env.svc.CreateItem(context.Background(), owner, validDetails(), upload("pic.png", "v1"), "http://localhost:3000")
	require.NoError(t, err)
	return item
}

var errBoom = errors.New("boom")
