package app

import (
	"context"
	"sync"

	"marker-bot/internal/domain/entity"
	"marker-bot/internal/domain/port"
)

// UserService меняет состояние пользователей. Все переходы идут под одной блокировкой,
// поэтому проверка и смена состояния в StartProcessing атомарны.
type UserService struct {
	mu   sync.Mutex
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setStateLocked(ctx, userID, chatID, state)
}

// BeginScan переводит пользователя в ожидание фото с маркерами
func (s *UserService) BeginScan(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// StartProcessing помечает, что фото пользователя обрабатывается.
// Если обработка предыдущего фото не закончена, возвращает entity.ErrUserBusy.
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if !user.AcceptsPhoto() {
		return nil, entity.ErrUserBusy
	}

	return s.setStateLocked(ctx, userID, chatID, entity.StateProcessing)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

func (s *UserService) setStateLocked(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
