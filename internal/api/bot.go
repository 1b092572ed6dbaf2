package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	app "marker-bot/internal/application"
	"marker-bot/internal/domain/entity"
	"marker-bot/internal/infrastructure/report"
)

const (
	msgStart = `👋 Привет! Я бот для поиска ArUco-маркеров на фотографиях.

📸 Отправьте мне фото, и я найду маркеры (словарь 5x5, 250 шаблонов), посчитаю их ориентацию и отмечу на снимке.

📋 Команды:
/scan — начать сканирование
/report — отчёт о последнем сканировании (YAML)
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото с маркерами
2️⃣ Бот найдёт маркеры и посчитает углы
3️⃣ Вы получите фото с разметкой и список: ID → угол

📐 Угол отсчитывается против часовой стрелки от направления вправо, маркер «стоит прямо» при 90°.

🎨 Разметка:
• серый — верхний левый угол
• зелёный — верхний правый угол
• розовый — нижний правый угол
• белый — нижний левый угол
• синяя линия — направление «вверх» маркера

📋 Команды:
/scan — начать сканирование
/report — отчёт о последнем сканировании
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото с маркерами."
	msgCancelled       = "❌ Операция отменена. Отправьте /scan для нового сканирования."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото с маркерами."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Ищу маркеры..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgNoMarkers       = "🔍 Маркеры не найдены. Попробуйте снять ближе и при хорошем освещении."
	msgNoReport        = "📭 Сканирований пока не было. Отправьте фото."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api   *tgbotapi.BotAPI
	users *app.UserService
	scans *app.ScanService
	log   zerolog.Logger
	wg    sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, scans *app.ScanService, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	return &Bot{
		api:   api,
		users: users,
		scans: scans,
		log:   log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Каждое сообщение обрабатывается в своей горутине, Run ждёт их завершения.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("user", msg.From.ID).Msg("get user")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "scan":
		if _, err := b.users.BeginScan(ctx, user.ID, user.ChatID); err != nil {
			b.log.Error().Err(err).Int64("user", user.ID).Msg("begin scan")
		}
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "report":
		b.sendReport(ctx, msg.Chat.ID, user)

	case "cancel":
		if _, err := b.users.Cancel(ctx, user.ID, user.ChatID); err != nil {
			b.log.Error().Err(err).Int64("user", user.ID).Msg("cancel")
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handlePhoto сканирует фото и отправляет размеченный снимок
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	if _, err := b.users.StartProcessing(ctx, user.ID, user.ChatID); err != nil {
		if !errors.Is(err, entity.ErrUserBusy) {
			b.log.Error().Err(err).Int64("user", user.ID).Msg("start processing")
		}
		b.sendMessage(msg.Chat.ID, messageForError(err))
		return
	}
	defer b.setState(ctx, user, entity.StateMainMenu)

	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Берём файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error().Err(err).Str("file", photo.FileID).Msg("download photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	b.log.Debug().Int("bytes", len(imageData)).Int64("user", user.ID).Msg("photo received")

	out, err := b.scans.ProcessForUser(ctx, user.ID, photo.FileUniqueID, imageData)
	if err != nil {
		if !errors.Is(err, entity.ErrNoMarkers) {
			b.log.Error().Err(err).Int64("user", user.ID).Msg("scan photo")
		}
		b.sendMessage(msg.Chat.ID, messageForError(err))
		return
	}

	reply := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "markers.jpg", Bytes: out.Annotated})
	reply.Caption = formatScanSummary(out.Scan)
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error().Err(err).Int64("chat", msg.Chat.ID).Msg("send photo")
	}
}

// sendReport отправляет последнее сканирование пользователя YAML-файлом
func (b *Bot) sendReport(ctx context.Context, chatID int64, user *entity.User) {
	scan, err := b.scans.LastScan(ctx, user.ID)
	if err != nil {
		b.sendMessage(chatID, messageForError(err))
		return
	}

	data, err := report.Marshal(&report.Report{
		GeneratedAt: time.Now(),
		Frames:      []report.Frame{report.FromScan(scan)},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("marshal report")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "scan.yaml", Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("send report")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.users.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		b.log.Error().Err(err).Int64("user", user.ID).Msg("set state")
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("send message")
	}
}

// formatScanSummary формирует подпись к фото: число маркеров и угол каждого
func formatScanSummary(scan *entity.Scan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 Найдено маркеров: %d", scan.MarkerCount())
	for _, id := range scan.Detection.Markers.IDs() {
		fmt.Fprintf(&sb, "\nID %d → %d°", id, scan.Angles[id])
	}
	return sb.String()
}

// messageForError подбирает ответ пользователю по ошибке сканирования
func messageForError(err error) string {
	switch {
	case errors.Is(err, entity.ErrNoMarkers):
		return msgNoMarkers
	case errors.Is(err, entity.ErrUserBusy):
		return msgBusy
	case errors.Is(err, entity.ErrScanNotFound):
		return msgNoReport
	default:
		return msgProcessingError
	}
}
