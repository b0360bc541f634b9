package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domain "user-roster/internal/domain/user"
	pkgerrors "user-roster/pkg/errors"
)

// UserStore keeps the roster in process memory for the lifetime of the process.
// IDs come from nextID, not from len(records), so they are never reused.
type UserStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []domain.User
	log     *zap.Logger
}

// NewUserStore creates a store holding a copy of seed.
// The counter continues after the highest seeded ID.
func NewUserStore(log *zap.Logger, seed []domain.User) *UserStore {
	s := &UserStore{
		nextID:  1,
		records: make([]domain.User, 0, len(seed)),
		log:     log,
	}
	for _, u := range seed {
		s.records = append(s.records, u)
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
	return s
}

// ListAll returns a snapshot of all records in insertion order.
func (s *UserStore) ListAll(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append stores a new record under the next ID. Callers validate input.
func (s *UserStore) Append(_ context.Context, name, email string) (*domain.User, error) {
	s.mu.Lock()
	u := domain.User{
		ID:    s.nextID,
		Name:  name,
		Email: email,
	}
	s.nextID++
	s.records = append(s.records, u)
	s.mu.Unlock()

	s.log.Debug("user appended to memory store", zap.Int64("id", u.ID))
	return &u, nil
}

// GetByID returns the record with the given ID.
func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.records {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}
