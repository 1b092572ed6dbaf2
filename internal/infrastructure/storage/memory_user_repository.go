package storage

import (
	"context"
	"sync"

	"marker-bot/internal/domain/entity"
	"marker-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей бота
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт пустое хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает пользователя, при первом обращении регистрирует его в главном меню.
// Проверка и создание выполняются под одной блокировкой.
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[userID]; ok {
		return user, nil
	}

	user := entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user, nil
}

// Save записывает пользователя целиком
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()

	return nil
}

// UpdateState меняет состояние уже известного пользователя, неизвестных пропускает
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[userID]; ok {
		user.SetState(state)
	}

	return nil
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
