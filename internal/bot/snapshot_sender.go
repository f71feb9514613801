package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DocumentSender delivers snapshot files to one chat as documents.
type DocumentSender struct {
	outbox *Outbox
	chatID int64
}

func NewDocumentSender(outbox *Outbox, chatID int64) *DocumentSender {
	return &DocumentSender{outbox: outbox, chatID: chatID}
}

// SendSnapshot blocks until the upload succeeded or failed after its retry,
// so the caller may remove the file afterwards.
func (s *DocumentSender) SendSnapshot(ctx context.Context, path, caption string) error {
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	return s.outbox.SendWait(ctx, s.chatID, doc)
}
