package user

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id int) (User, error)
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users []User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make([]User, 0, len(seed))}
	repo.users = append(repo.users, seed...)
	return repo
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}
