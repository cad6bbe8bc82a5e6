package user

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindOne returns the user or ErrNotFound.
func (s *Service) FindOne(ctx context.Context, id int) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}
