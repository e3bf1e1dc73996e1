package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/csentein/P6-Sentein-Clement/internal/domain"
)

type AccountStore struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Account
}

var _ domain.AccountRepository = (*AccountStore)(nil)

func NewAccountStore() *AccountStore {
	return &AccountStore{byEmail: make(map[string]domain.Account)}
}

func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	key := strings.ToLower(account.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[key]; exists {
		return domain.ErrEmailTaken
	}
	s.byEmail[key] = *account
	return nil
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}
