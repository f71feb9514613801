package bot

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"intake-bot/internal/config"
	"intake-bot/internal/model"
	"intake-bot/internal/repository"
	"intake-bot/internal/service"
)

var errFlaky = errors.New("flaky network")

// fakeAPI records outbound calls and can fail the next few of them.
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	attempts int
	failures int
	// block, when set, holds sends to blockChat until it is closed.
	block     chan struct{}
	blockChat int64
	updates   chan tgbotapi.Update
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.block != nil && chatOf(c) == f.blockChat {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return tgbotapi.Message{}, errFlaky
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) Sent() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tgbotapi.Chattable, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeAPI) Texts() []string {
	var out []string
	for _, c := range f.Sent() {
		out = append(out, textOf(c))
	}
	return out
}

func (f *fakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.requests = nil
	f.attempts = 0
}

func chatOf(c tgbotapi.Chattable) int64 {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.ChatID
	case tgbotapi.EditMessageTextConfig:
		return v.ChatID
	case tgbotapi.PhotoConfig:
		return v.ChatID
	case tgbotapi.VoiceConfig:
		return v.ChatID
	case tgbotapi.VideoNoteConfig:
		return v.ChatID
	case tgbotapi.DocumentConfig:
		return v.ChatID
	}
	return 0
}

func textOf(c tgbotapi.Chattable) string {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		return v.Text
	case tgbotapi.EditMessageTextConfig:
		return v.Text
	case tgbotapi.PhotoConfig:
		return v.Caption
	case tgbotapi.VoiceConfig:
		return v.Caption
	case tgbotapi.DocumentConfig:
		return v.Caption
	case tgbotapi.VideoNoteConfig:
		return "<video_note>"
	}
	return ""
}

// spyStore counts reads that reach the wrapped store.
type spyStore struct {
	Store
	mu         sync.Mutex
	reads      int
	failUpsert error
}

func (s *spyStore) count() {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
}

func (s *spyStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *spyStore) UpsertContact(ctx context.Context, c model.Contact) (*model.User, error) {
	if s.failUpsert != nil {
		return nil, s.failUpsert
	}
	return s.Store.UpsertContact(ctx, c)
}

func (s *spyStore) FindByTelegramID(ctx context.Context, id int64) (*model.User, error) {
	s.count()
	return s.Store.FindByTelegramID(ctx, id)
}

func (s *spyStore) ListAll(ctx context.Context) ([]model.User, error) {
	s.count()
	return s.Store.ListAll(ctx)
}

func (s *spyStore) ListToday(ctx context.Context) ([]model.User, error) {
	s.count()
	return s.Store.ListToday(ctx)
}

type fakeExporter struct {
	mu       sync.Mutex
	exported []model.User
	err      error
}

func (e *fakeExporter) Info(context.Context) (service.SheetInfo, error) {
	return service.SheetInfo{Title: "Заявки", URL: "https://docs.google.com/spreadsheets/d/test"}, nil
}

func (e *fakeExporter) Export(_ context.Context, users []model.User) (service.ExportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return service.ExportResult{}, e.err
	}
	e.exported = append(e.exported, users...)
	return service.ExportResult{Total: len(users), Appended: len(users)}, nil
}

const adminID int64 = 999

func testConfig() config.Config {
	return config.Config{
		AdminIDs: []int64{adminID},
		Transport: config.TransportConfig{
			SendTimeout: 15 * time.Second,
			RetryDelay:  time.Millisecond,
		},
	}
}

func newTestStore(t *testing.T) *repository.UserRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intake.db")
	db, err := repository.NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewUserRepository(db, path)
}

// settle waits until background jobs and every chat queue are done.
func settle(b *Bot) {
	b.jobs.Wait()
	b.outbox.wg.Wait()
}

func privateChat(id int64) *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: id, Type: "private"}
}

func commandUpdate(from int64, name, cmd string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, FirstName: name},
		Chat:      privateChat(from),
		Text:      "/" + cmd,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}},
	}}
}

func textUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: from},
		Chat:      privateChat(from),
		Text:      text,
	}}
}

func contactUpdate(from int64, first, phone string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: from, FirstName: first},
		Chat:      privateChat(from),
		Contact:   &tgbotapi.Contact{PhoneNumber: phone, FirstName: first, UserID: from},
	}}
}

func photoUpdate(from int64, caption string, sizes ...string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 4,
		From:      &tgbotapi.User{ID: from},
		Chat:      privateChat(from),
		Caption:   caption,
	}
	for _, id := range sizes {
		msg.Photo = append(msg.Photo, tgbotapi.PhotoSize{FileID: id})
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 42, Chat: privateChat(from)},
		Data:    data,
	}}
}

func containsText(texts []string, want string) bool {
	for _, s := range texts {
		if s == want {
			return true
		}
	}
	return false
}
