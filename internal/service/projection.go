package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"intake-bot/internal/model"
)

// MessageLimit is the Telegram text limit, counted in UTF-16 code units.
const MessageLimit = 4096

const (
	separator       = "──────────────────────────────"
	noRequestLabel  = "Не указан"
	timestampLayout = "02.01.2006 15:04"
)

// AllUsersReport renders every record for the admin.
func AllUsersReport(users []model.User, loc *time.Location) string {
	return renderUsers("👥 Все пользователи:\n\n", "Регистрация", users, loc)
}

// TodayReport renders today's registrations for the admin.
func TodayReport(users []model.User, now time.Time) string {
	header := fmt.Sprintf("📅 Регистрации за %s:\n\n", now.Format("02.01.2006"))
	return renderUsers(header, "Время", users, now.Location())
}

func renderUsers(header, timeLabel string, users []model.User, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var sb strings.Builder
	sb.WriteString(header)
	for _, u := range users {
		request := u.Request
		if request == "" {
			request = noRequestLabel
		}
		sb.WriteString(fmt.Sprintf("ID: %d\n", u.TelegramID))
		sb.WriteString(fmt.Sprintf("Имя: %s\n", strings.TrimSpace(u.FullName())))
		sb.WriteString(fmt.Sprintf("Телефон: %s\n", u.Phone))
		sb.WriteString(fmt.Sprintf("%s: %s\n", timeLabel, u.RegisteredAt.In(loc).Format(timestampLayout)))
		sb.WriteString(fmt.Sprintf("Запрос: %s\n", request))
		if u.RequestKind != "" {
			sb.WriteString(fmt.Sprintf("Тип контента: %s\n", u.RequestKind))
		}
		sb.WriteString(separator)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Chunk slices text into pieces of at most limit UTF-16 code units, the unit
// Telegram counts message length in. A surrogate pair is never split. The
// pieces concatenate back to the original text.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	if utf16Len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	start, units := 0, 0
	for i, r := range text {
		w := utf16.RuneLen(r)
		if w < 0 {
			// invalid runes are sent as U+FFFD
			w = 1
		}
		if units+w > limit {
			chunks = append(chunks, text[start:i])
			start, units = i, 0
		}
		units += w
	}
	return append(chunks, text[start:])
}

func utf16Len(text string) int {
	n := 0
	for _, r := range text {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}

// MediaCaption labels a replayed media file with its submitter.
func MediaCaption(u model.User) string {
	return fmt.Sprintf("📎 Медиафайл от пользователя %s (ID: %d)", strings.TrimSpace(u.FullName()), u.TelegramID)
}

// WithMedia keeps the records whose request carries a replayable file.
func WithMedia(users []model.User) []model.User {
	var out []model.User
	for _, u := range users {
		if u.MediaRef != "" && u.RequestKind.IsMedia() {
			out = append(out, u)
		}
	}
	return out
}
