package memory

import (
	"context"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
)

// SaveUser registers a new user. Username and email must both be unique.
func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.UserID]; exists {
		return apperrors.ErrDuplicate
	}
	if _, exists := s.userByName[user.Username]; exists {
		return apperrors.ErrDuplicate
	}
	if _, exists := s.userByEmail[user.Email]; exists {
		return apperrors.ErrDuplicate
	}
	s.users[user.UserID] = user
	s.userByName[user.Username] = user.UserID
	s.userByEmail[user.Email] = user.UserID
	s.userOrder = append(s.userOrder, user.UserID)
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userByName[username]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userByEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

// ListUsers returns every user in creation order.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out, nil
}

// UpdateUser replaces the stored user record.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[user.UserID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if old.Username != user.Username {
		delete(s.userByName, old.Username)
		s.userByName[user.Username] = user.UserID
	}
	if old.Email != user.Email {
		delete(s.userByEmail, old.Email)
		s.userByEmail[user.Email] = user.UserID
	}
	s.users[user.UserID] = user
	return nil
}
