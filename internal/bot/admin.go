package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"intake-bot/internal/model"
	"intake-bot/internal/service"
)

func (b *Bot) handleShowUsers(ctx context.Context, t turn) {
	if !b.requireAdmin(t) {
		return
	}
	users, err := b.store.ListAll(ctx)
	if err != nil {
		log.Printf("list users: %v", err)
		b.sendText(t.chatID, msgLoadFailed)
		return
	}
	log.Printf("[info] admin %d listed %d users", t.from.ID, len(users))
	if len(users) == 0 {
		b.sendText(t.chatID, msgNoUsers)
		return
	}
	b.sendReport(t.chatID, service.AllUsersReport(users, b.now().Location()))
	b.replayMedia(t.chatID, users)
}

func (b *Bot) handleShowToday(ctx context.Context, t turn) {
	if !b.requireAdmin(t) {
		return
	}
	users, err := b.store.ListToday(ctx)
	if err != nil {
		log.Printf("list today: %v", err)
		b.sendText(t.chatID, msgLoadFailed)
		return
	}
	log.Printf("[info] admin %d listed %d users for today", t.from.ID, len(users))
	if len(users) == 0 {
		b.sendText(t.chatID, msgNoneToday)
		return
	}
	b.sendReport(t.chatID, service.TodayReport(users, b.now()))
	b.replayMedia(t.chatID, users)
}

func (b *Bot) sendReport(chatID int64, text string) {
	for _, chunk := range service.Chunk(text, service.MessageLimit) {
		b.sendText(chatID, chunk)
	}
}

// replayMedia re-sends every stored file with its submitter. Each file waits
// the pacing delay; a failed file is logged by the outbox and the rest go on.
func (b *Bot) replayMedia(chatID int64, users []model.User) {
	for _, u := range service.WithMedia(users) {
		caption := service.MediaCaption(u)
		file := tgbotapi.FileID(u.MediaRef)
		switch u.RequestKind {
		case model.KindPhoto:
			photo := tgbotapi.NewPhoto(chatID, file)
			photo.Caption = caption
			b.outbox.SendPaced(chatID, photo, b.pacing)
		case model.KindVoice:
			voice := tgbotapi.NewVoice(chatID, file)
			voice.Caption = caption
			b.outbox.SendPaced(chatID, voice, b.pacing)
		case model.KindVideoNote:
			// video notes carry no caption
			b.outbox.SendPaced(chatID, tgbotapi.NewVideoNote(chatID, 0, file), b.pacing)
			b.sendText(chatID, caption)
		}
	}
}

// handleExport runs the sheet export off the update loop.
func (b *Bot) handleExport(ctx context.Context, t turn) {
	if !b.requireAdmin(t) {
		return
	}
	b.sendText(t.chatID, msgExportStart)
	if b.exporter == nil {
		b.sendText(t.chatID, msgExportDisabled)
		return
	}

	b.jobs.Add(1)
	go func() {
		defer b.jobs.Done()
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exportTimeout)
		defer cancel()
		b.runExport(jobCtx, t.chatID)
	}()
}

func (b *Bot) runExport(ctx context.Context, chatID int64) {
	if info, err := b.exporter.Info(ctx); err != nil {
		log.Printf("sheet info: %v", err)
	} else {
		b.sendText(chatID, fmt.Sprintf(msgExportSheetFormat, info.Title, info.URL))
	}

	users, err := b.store.ListAll(ctx)
	if err != nil {
		log.Printf("export list users: %v", err)
		b.sendText(chatID, fmt.Sprintf(msgExportFailedFormat, err))
		return
	}
	b.sendText(chatID, fmt.Sprintf(msgExportFoundFormat, len(users)))
	if len(users) == 0 {
		b.sendText(chatID, msgExportNothing)
		return
	}

	res, err := b.exporter.Export(ctx, users)
	if err != nil {
		log.Printf("export: %v", err)
		b.sendText(chatID, fmt.Sprintf(msgExportFailedFormat, err))
		return
	}
	log.Printf("[info] export finished total=%d appended=%d", res.Total, res.Appended)
	b.sendText(chatID, fmt.Sprintf(msgExportDoneFormat, res.Appended))
}
