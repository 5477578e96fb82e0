package telegram

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/PoluyanbIch/exambot/internal/metrics"
	"github.com/PoluyanbIch/exambot/internal/service"
)

// botAPI is the part of *tgbotapi.BotAPI the bot needs.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api    botAPI
	quiz   *service.QuizService
	logger zerolog.Logger
}

func NewBot(api botAPI, quiz *service.QuizService, logger zerolog.Logger) *Bot {
	return &Bot{
		api:    api,
		quiz:   quiz,
		logger: logger.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run consumes updates until the channel closes or ctx is cancelled. Updates
// of one user are handled strictly in order; different users run in parallel.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	d := newDispatcher(func(update tgbotapi.Update) {
		b.HandleUpdate(ctx, update)
	})
	defer d.wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			from := senderOf(update)
			if from == nil {
				continue
			}
			d.dispatch(from.ID, update)
		}
	}
}

// HandleUpdate processes a single update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("update handler panicked")
		}
		metrics.ActiveSessions.Set(float64(b.quiz.SessionCount()))
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	from := toSender(msg.From)
	chatID := msg.Chat.ID

	var (
		reply service.Reply
		err   error
		kind  string
	)

	switch {
	case msg.IsCommand():
		kind = "command"
		reply, err = b.handleCommand(ctx, from, msg.Command())
	case msg.Document != nil || len(msg.Photo) > 0:
		kind = "upload"
		reply, err = b.handleUpload(ctx, chatID, from, msg)
	case msg.Text != "":
		kind = "text"
		reply, err = b.quiz.HandleText(ctx, from, msg.Text)
	default:
		return
	}

	metrics.UpdatesHandled.WithLabelValues(kind).Inc()
	b.respond(chatID, from, kind, reply, err)
}

func (b *Bot) handleCommand(ctx context.Context, from service.Sender, command string) (service.Reply, error) {
	switch command {
	case "start":
		return service.MainMenu(from.FirstName), nil
	case "register":
		return b.quiz.Register(ctx, from)
	case "play":
		return b.quiz.Play(ctx, from)
	case "admin":
		return b.quiz.AdminLogin(from), nil
	case "cancel":
		return b.quiz.Cancel(from), nil
	default:
		return service.Reply{Text: "Unknown command. Send /start to see the menu."}, nil
	}
}

func (b *Bot) handleUpload(ctx context.Context, chatID int64, from service.Sender, msg *tgbotapi.Message) (service.Reply, error) {
	ref := fileRefOf(msg)
	if b.quiz.IsAdmin(from.ID) {
		b.send(chatID, service.UploadNotice(ref))
	}
	return b.quiz.IngestFile(ctx, from, ref)
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.From == nil {
		return
	}
	from := toSender(callback.From)
	chatID := from.ID
	if callback.Message != nil && callback.Message.Chat != nil {
		chatID = callback.Message.Chat.ID
	}

	var (
		reply service.Reply
		err   error
	)

	switch callback.Data {
	case service.ActionRegister:
		reply, err = b.quiz.Register(ctx, from)
	case service.ActionPlay:
		reply, err = b.quiz.Play(ctx, from)
	case service.ActionAdminLogin:
		reply = b.quiz.AdminLogin(from)
	case service.ActionAdminMenu:
		reply, err = b.quiz.AdminMenu(from)
	case service.ActionAddQuestionMenu:
		reply, err = b.quiz.AddQuestionMenu(from)
	case service.ActionAddFileQuestions:
		reply, err = b.quiz.BeginFileAuthoring(from)
	case service.ActionAddTextQuestions:
		reply, err = b.quiz.BeginTextAuthoring(from)
	case service.ActionShowUsers:
		reply, err = b.quiz.ShowUsers(ctx, from)
	case service.ActionShowAnswers:
		reply, err = b.quiz.ShowAnswers(ctx, from)
	case service.ActionClearQuestions:
		reply, err = b.quiz.ClearQuestions(ctx, from)
	default:
		reply, err = b.handleControl(from, callback.Data)
	}

	b.answerCallback(callback.ID, reply.Toast)
	metrics.UpdatesHandled.WithLabelValues("callback").Inc()
	b.respond(chatID, from, "callback", reply, err)
}

func (b *Bot) handleControl(from service.Sender, data string) (service.Reply, error) {
	ref, ok := service.ParseControlRef(data)
	if !ok {
		return service.Reply{Text: "Unknown command"}, nil
	}
	if ref.Kind == service.ControlAnswer {
		return b.quiz.Answer(from, ref)
	}
	return b.quiz.Next(from, ref)
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn().Err(err).Msg("error answering callback")
	}
}

// respond logs the outcome at a level matching the error class and sends the reply.
func (b *Bot) respond(chatID int64, from service.Sender, kind string, reply service.Reply, err error) {
	if err != nil {
		class := errorClass(err)
		metrics.HandlerErrors.WithLabelValues(class).Inc()
		b.logEvent(levelFor(class), err).
			Int64("user_id", from.ID).
			Str("kind", kind).
			Str("class", class).
			Msg("update handled with error")
	}
	b.send(chatID, reply)
}

func (b *Bot) logEvent(level zerolog.Level, err error) *zerolog.Event {
	return b.logger.WithLevel(level).Err(err)
}

func (b *Bot) send(chatID int64, reply service.Reply) {
	for _, msg := range render(chatID, reply) {
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("error sending message")
		}
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, service.ErrPersistenceFailure):
		return "persistence"
	case errors.Is(err, service.ErrIngestionFailure):
		return "ingestion"
	case errors.Is(err, service.ErrNoQuestionsFound):
		return "no_questions"
	case errors.Is(err, service.ErrUnauthorizedAction):
		return "unauthorized"
	case errors.Is(err, service.ErrStaleSessionReference):
		return "stale"
	default:
		return "guard"
	}
}

func levelFor(class string) zerolog.Level {
	switch class {
	case "persistence", "ingestion":
		return zerolog.ErrorLevel
	case "unauthorized", "stale", "no_questions":
		return zerolog.WarnLevel
	default:
		return zerolog.DebugLevel
	}
}

func senderOf(update tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	case update.Message != nil:
		return update.Message.From
	}
	return nil
}

func toSender(u *tgbotapi.User) service.Sender {
	return service.Sender{ID: u.ID, FirstName: u.FirstName, Username: u.UserName}
}

// fileRefOf picks the document, or the largest photo size.
func fileRefOf(msg *tgbotapi.Message) service.FileRef {
	if doc := msg.Document; doc != nil {
		name := doc.FileName
		if name == "" {
			name = doc.FileUniqueID + extensionForMime(doc.MimeType)
		}
		return service.FileRef{ID: doc.FileID, Name: name}
	}
	photo := msg.Photo[len(msg.Photo)-1]
	return service.FileRef{ID: photo.FileID, Name: fmt.Sprintf("%s.jpg", photo.FileUniqueID)}
}

func extensionForMime(mime string) string {
	switch mime {
	case "application/pdf":
		return ".pdf"
	case "text/plain":
		return ".txt"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
