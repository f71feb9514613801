package dialog

import (
	"strings"

	"intake-bot/internal/model"
)

const noCaption = "Без описания"

// Content is the part of an inbound message the request phase cares about.
type Content struct {
	Text    string
	Caption string
	// PhotoSizes holds file ids ordered from smallest to largest resolution.
	PhotoSizes  []string
	VoiceID     string
	VideoNoteID string
}

// Classify picks exactly one kind: text, then photo, voice, video note, else unknown.
func Classify(c Content) model.Submission {
	caption := strings.TrimSpace(c.Caption)
	if caption == "" {
		caption = noCaption
	}

	switch {
	case c.Text != "":
		return model.Submission{Kind: model.KindText, Summary: "Текст: " + c.Text}
	case len(c.PhotoSizes) > 0:
		return model.Submission{
			Kind:     model.KindPhoto,
			Summary:  "Фото: " + caption,
			MediaRef: c.PhotoSizes[len(c.PhotoSizes)-1],
		}
	case c.VoiceID != "":
		return model.Submission{Kind: model.KindVoice, Summary: "Голосовое сообщение: " + caption, MediaRef: c.VoiceID}
	case c.VideoNoteID != "":
		return model.Submission{Kind: model.KindVideoNote, Summary: "Видеокружок: " + caption, MediaRef: c.VideoNoteID}
	default:
		return model.Submission{Kind: model.KindUnknown, Summary: "Неизвестный тип контента"}
	}
}
