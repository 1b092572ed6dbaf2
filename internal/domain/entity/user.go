package entity

import "errors"

// ErrUserBusy возвращается, если фото пользователя уже обрабатывается
var ErrUserBusy = errors.New("previous photo is still being processed")

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ждём фото с маркерами
	StateProcessing    UserState = "processing"     // Идёт сканирование
)

// User пользователь бота и его место в диалоге
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние
}

// NewUser регистрирует пользователя в главном меню
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// AcceptsPhoto сообщает, можно ли начать сканирование нового фото.
// Фото принимается из главного меню и после /scan, но не во время обработки.
func (u *User) AcceptsPhoto() bool {
	return u.State != StateProcessing
}
