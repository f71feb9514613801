package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"intake-bot/internal/config"
	"intake-bot/internal/dialog"
	"intake-bot/internal/model"
	"intake-bot/internal/repository"
	"intake-bot/internal/service"
)

// API is the Telegram client the bot polls and sends through.
type API interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Store is the record store behind the dialogue and the admin views.
type Store interface {
	UpsertContact(ctx context.Context, contact model.Contact) (*model.User, error)
	UpdateRequest(ctx context.Context, telegramID int64, sub model.Submission) error
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListToday(ctx context.Context) ([]model.User, error)
}

// Exporter pushes records to the spreadsheet.
type Exporter interface {
	Info(ctx context.Context) (service.SheetInfo, error)
	Export(ctx context.Context, users []model.User) (service.ExportResult, error)
}

const exportTimeout = 2 * time.Minute

// Bot aggregates Telegram API with the store and the export.
type Bot struct {
	api      API
	outbox   *Outbox
	store    Store
	exporter Exporter
	admins   map[int64]struct{}
	sessions *dialog.Sessions

	pacing      time.Duration
	pollTimeout int
	now         func() time.Time

	jobs sync.WaitGroup
}

// NewAPI authorizes the token with an HTTP client bounded by timeout.
func NewAPI(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return api, nil
}

// New wires the bot. A nil exporter disables the spreadsheet export.
func New(api API, store Store, exporter Exporter, cfg config.Config) *Bot {
	admins := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}
	return &Bot{
		api:         api,
		outbox:      NewOutbox(api, cfg.Transport.RetryDelay),
		store:       store,
		exporter:    exporter,
		admins:      admins,
		sessions:    dialog.NewSessions(),
		pacing:      cfg.Transport.MediaPacing,
		pollTimeout: pollSeconds(cfg.Transport.SendTimeout),
		now:         time.Now,
	}
}

// PublishCommands sets the basic menu for everyone and the admin menu per admin chat.
func (b *Bot) PublishCommands() {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(basicCommands()...)); err != nil {
		log.Printf("set commands: %v", err)
		return
	}
	for id := range b.admins {
		scope := tgbotapi.NewBotCommandScopeChat(id)
		if _, err := b.api.Request(tgbotapi.NewSetMyCommandsWithScope(scope, adminCommands()...)); err != nil {
			log.Printf("[warn] set admin commands for %d: %v", id, err)
		}
	}
	log.Printf("[info] bot commands published, admins=%d", len(b.admins))
}

// Start begins polling updates until ctx is cancelled. Updates are handled one at a time.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}

	return nil
}

// Close waits for background admin jobs and drains the outbox.
func (b *Bot) Close() {
	b.jobs.Wait()
	b.outbox.Close()
}

// HandleUpdate routes one inbound update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

// turn is the addressing context of one dialogue step.
type turn struct {
	chatID int64
	from   *tgbotapi.User
	// messageID is the bot message a callback came from, zero for plain messages.
	messageID int
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	t := turn{chatID: msg.Chat.ID, from: msg.From}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		return b.handleCommand(ctx, t, msg.Command())
	}

	ev := dialog.Event{Type: dialog.EventInput, Submission: dialog.Classify(contentOf(msg))}
	if msg.Contact != nil {
		ev.Type = dialog.EventContact
		ev.Contact = contactOf(msg.From, msg.Contact)
	}
	b.dispatch(ctx, t, ev)
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, t turn, command string) error {
	switch command {
	case "start":
		b.dispatch(ctx, t, dialog.Event{Type: dialog.EventStart, Admin: b.isAdmin(t.from.ID)})
	case "help":
		b.handleHelp(t)
	case "show_users":
		b.handleShowUsers(ctx, t)
	case "show_today":
		b.handleShowToday(ctx, t)
	case "export_sheets":
		b.handleExport(ctx, t)
	default:
		b.sendText(t.chatID, msgUnknownCmd)
	}
	return nil
}

func (b *Bot) handleHelp(t turn) {
	if b.isAdmin(t.from.ID) {
		b.sendText(t.chatID, msgAdminHelp)
		return
	}
	b.sendText(t.chatID, msgUserHelp)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	t := turn{chatID: cb.Message.Chat.ID, from: cb.From, messageID: cb.Message.MessageID}
	log.Printf("[info] callback %s from %d", cb.Data, cb.From.ID)

	b.outbox.Request(t.chatID, tgbotapi.NewCallback(cb.ID, ""))

	switch cb.Data {
	case cbChangeRequest:
		ev := dialog.Event{Type: dialog.EventChangeRequest}
		if b.sessions.Get(cb.From.ID) != dialog.StateSubmitted {
			ev.Registered = b.registered(ctx, cb.From.ID)
		}
		b.dispatch(ctx, t, ev)
	case cbFinish:
		b.dispatch(ctx, t, dialog.Event{Type: dialog.EventFinish})
	case cbAdminShowUsers:
		b.handleShowUsers(ctx, t)
	case cbAdminShowToday:
		b.handleShowToday(ctx, t)
	case cbAdminExportSheets:
		b.handleExport(ctx, t)
	case cbAdminHelp:
		if !b.requireAdmin(t) {
			return nil
		}
		b.sendText(t.chatID, msgAdminMenuHelp)
	}
	return nil
}

// registered tells whether a record exists, for sessions lost on restart.
func (b *Bot) registered(ctx context.Context, telegramID int64) bool {
	_, err := b.store.FindByTelegramID(ctx, telegramID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("find user %d: %v", telegramID, err)
	}
	return err == nil
}

// dispatch runs one transition and executes its effects. Storage outcomes
// re-enter as events, so one inbound update may chain two transitions.
func (b *Bot) dispatch(ctx context.Context, t turn, ev dialog.Event) {
	state := b.sessions.Get(t.from.ID)
	next, effects := dialog.Transition(state, ev)
	if next != state {
		log.Printf("[info] dialog user=%d %s -> %s", t.from.ID, state, next)
	}
	b.sessions.Set(t.from.ID, next)
	for _, eff := range effects {
		b.apply(ctx, t, eff)
	}
}

func (b *Bot) apply(ctx context.Context, t turn, eff dialog.Effect) {
	switch eff.Type {
	case dialog.EffectShowAdminMenu:
		b.sendWithReplyMarkup(t.chatID, msgAdminWelcome, adminKeyboard())
	case dialog.EffectAskContact:
		b.sendWithReplyMarkup(t.chatID, fmt.Sprintf(msgGreetingFormat, t.from.FirstName), contactKeyboard())
	case dialog.EffectRepeatContactPrompt:
		b.sendWithReplyMarkup(t.chatID, msgSharePrompt, contactKeyboard())
	case dialog.EffectSaveContact:
		if _, err := b.store.UpsertContact(ctx, eff.Contact); err != nil {
			log.Printf("save contact %d: %v", t.from.ID, err)
			b.dispatch(ctx, t, dialog.Event{Type: dialog.EventContactFailed})
			return
		}
		log.Printf("[info] contact saved user=%d", t.from.ID)
		b.dispatch(ctx, t, dialog.Event{Type: dialog.EventContactSaved})
	case dialog.EffectContactFailed:
		b.sendWithReplyMarkup(t.chatID, msgContactFailed, contactKeyboard())
	case dialog.EffectAskRequest:
		b.sendWithReplyMarkup(t.chatID, msgContactSaved, tgbotapi.NewRemoveKeyboard(true))
	case dialog.EffectSaveRequest:
		if err := b.store.UpdateRequest(ctx, t.from.ID, eff.Submission); err != nil {
			log.Printf("save request %d: %v", t.from.ID, err)
			b.dispatch(ctx, t, dialog.Event{Type: dialog.EventRequestFailed})
			return
		}
		log.Printf("[info] request saved user=%d kind=%s", t.from.ID, eff.Submission.Kind)
		b.dispatch(ctx, t, dialog.Event{Type: dialog.EventRequestSaved})
	case dialog.EffectRequestAccepted:
		b.sendWithReplyMarkup(t.chatID, msgRequestAccepted, requestActionsKeyboard())
	case dialog.EffectRequestFailed:
		b.sendText(t.chatID, msgRequestFailed)
	case dialog.EffectAskNewRequest:
		b.replaceText(t, msgNewRequest)
	case dialog.EffectFarewell:
		b.replaceText(t, msgFarewell)
	case dialog.EffectHintStart:
		b.sendText(t.chatID, msgHintStart)
	case dialog.EffectHintSubmitted:
		b.sendText(t.chatID, msgHintSubmitted)
	}
}

func (b *Bot) isAdmin(id int64) bool {
	_, ok := b.admins[id]
	return ok
}

// requireAdmin answers non-admins with the refusal and reports whether to go on.
func (b *Bot) requireAdmin(t turn) bool {
	if b.isAdmin(t.from.ID) {
		return true
	}
	log.Printf("[warn] admin action denied for %d", t.from.ID)
	b.sendText(t.chatID, msgNoAccess)
	return false
}

func (b *Bot) sendText(chatID int64, text string) {
	b.outbox.Send(chatID, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.outbox.Send(chatID, msg)
}

// replaceText edits the callback's message, or sends a new one outside callbacks.
func (b *Bot) replaceText(t turn, text string) {
	if t.messageID == 0 {
		b.sendText(t.chatID, text)
		return
	}
	b.outbox.Send(t.chatID, tgbotapi.NewEditMessageText(t.chatID, t.messageID, text))
}

func contentOf(msg *tgbotapi.Message) dialog.Content {
	c := dialog.Content{Text: msg.Text, Caption: msg.Caption}
	for _, p := range msg.Photo {
		c.PhotoSizes = append(c.PhotoSizes, p.FileID)
	}
	if msg.Voice != nil {
		c.VoiceID = msg.Voice.FileID
	}
	if msg.VideoNote != nil {
		c.VideoNoteID = msg.VideoNote.FileID
	}
	return c
}

// contactOf files the card under the sender; names fall back to the profile.
func contactOf(from *tgbotapi.User, c *tgbotapi.Contact) model.Contact {
	contact := model.Contact{
		TelegramID: from.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Phone:      c.PhoneNumber,
	}
	if contact.FirstName == "" {
		contact.FirstName = from.FirstName
	}
	if contact.LastName == "" {
		contact.LastName = from.LastName
	}
	return contact
}

// pollSeconds keeps the long poll inside the HTTP client timeout.
func pollSeconds(timeout time.Duration) int {
	seconds := int((timeout - 5*time.Second).Seconds())
	if seconds < 1 {
		return 1
	}
	if seconds > 60 {
		return 60
	}
	return seconds
}
