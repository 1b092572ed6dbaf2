package port

import (
	"context"

	"marker-bot/internal/domain/entity"
)

// UserRepository хранилище пользователей бота и их состояния в диалоге
type UserRepository interface {
	// Get возвращает пользователя, неизвестного регистрирует в главном меню
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save записывает пользователя
	Save(ctx context.Context, user *entity.User) error

	// UpdateState меняет состояние известного пользователя
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
