package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/starmatch/starmatch/internal/model"
)

// MemoryStore keeps users in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  []*model.User
	emails map[string]int64
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		emails: make(map[string]int64),
		now:    time.Now,
	}
}

// CreateUser stores a copy of u.
func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var key string
	if u.HasEmail() {
		key = strings.ToLower(*u.Email)
		if _, ok := s.emails[key]; ok {
			return ErrEmailExists
		}
	}

	u.ID = s.nextID
	u.CreatedAt = s.now().UTC()
	s.nextID++

	s.users = append(s.users, cloneUser(u))
	if key != "" {
		s.emails[key] = u.ID
	}
	return nil
}

// GetUserByID returns a copy of the stored user.
func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

// ListUsersExcluding returns copies of all users except id, in insertion order.
func (s *MemoryStore) ListUsersExcluding(_ context.Context, id int64) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == id {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func cloneUser(u *model.User) *model.User {
	c := *u
	if u.Email != nil {
		e := *u.Email
		c.Email = &e
	}
	c.Signs = u.Signs.Clone()
	return &c
}
