package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/rating"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ItemStore keeps items in a map guarded by one mutex. Every vote transition
// is checked and applied inside a single critical section, which is the
// in-process equivalent of a conditional document update.
type ItemStore struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	items map[uuid.UUID]*domain.Item
	order []uuid.UUID
}

var _ domain.ItemRepository = (*ItemStore)(nil)

func NewItemStore(clock clockwork.Clock) *ItemStore {
	return &ItemStore{
		clock: clock,
		items: make(map[uuid.UUID]*domain.Item),
	}
}

func cloneItem(item *domain.Item) *domain.Item {
	cp := *item
	cp.UsersLiked = slices.Clone(item.UsersLiked)
	cp.UsersDisliked = slices.Clone(item.UsersDisliked)
	if cp.UsersLiked == nil {
		cp.UsersLiked = []string{}
	}
	if cp.UsersDisliked == nil {
		cp.UsersDisliked = []string{}
	}
	return &cp
}

func cloneTallies(t domain.Tallies) *domain.Tallies {
	return &domain.Tallies{
		Likes:         t.Likes,
		Dislikes:      t.Dislikes,
		UsersLiked:    append([]string{}, t.UsersLiked...),
		UsersDisliked: append([]string{}, t.UsersDisliked...),
	}
}

func (s *ItemStore) List(_ context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneItem(s.items[id]))
	}
	return out, nil
}

func (s *ItemStore) GetByID(_ context.Context, itemID uuid.UUID) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (s *ItemStore) Create(_ context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ID] = cloneItem(item)
	s.order = append(s.order, item.ID)
	return nil
}

func (s *ItemStore) UpdateDetails(_ context.Context, itemID uuid.UUID, details domain.ItemDetails) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	item.ItemDetails = details
	item.UpdatedAt = s.clock.Now()
	return cloneItem(item), nil
}

func (s *ItemStore) Delete(_ context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, itemID)
	s.order = slices.DeleteFunc(s.order, func(id uuid.UUID) bool { return id == itemID })
	return nil
}

func (s *ItemStore) VoteState(_ context.Context, itemID uuid.UUID, userID string) (domain.VoteState, *domain.Tallies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return domain.VoteNeutral, nil, domain.ErrItemNotFound
	}
	return item.StateOf(userID), cloneTallies(item.Tallies), nil
}

func (s *ItemStore) ApplyTransition(_ context.Context, itemID uuid.UUID, userID string, t domain.Transition) (*domain.Tallies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if item.StateOf(userID) != t.From {
		return nil, domain.ErrVoteConflict
	}

	item.Tallies = rating.Apply(item.Tallies, userID, t)
	item.UpdatedAt = s.clock.Now()
	return cloneTallies(item.Tallies), nil
}
