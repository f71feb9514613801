package model

import "time"

// RequestKind classifies the content of a submitted request.
type RequestKind string

const (
	KindText      RequestKind = "text"
	KindPhoto     RequestKind = "photo"
	KindVoice     RequestKind = "voice"
	KindVideoNote RequestKind = "video_note"
	KindUnknown   RequestKind = "unknown"
)

// IsMedia reports whether the kind carries a platform-hosted file.
func (k RequestKind) IsMedia() bool {
	return k == KindPhoto || k == KindVoice || k == KindVideoNote
}

// User is the intake record: one row per Telegram user.
// Empty RequestKind means no request has been submitted yet.
type User struct {
	ID           uint  `gorm:"primaryKey"`
	TelegramID   int64 `gorm:"uniqueIndex;not null"`
	FirstName    string
	LastName     string
	Phone        string
	RegisteredAt time.Time   `gorm:"column:registration_timestamp;index"`
	Request      string      `gorm:"column:request"`
	RequestKind  RequestKind `gorm:"column:request_type"`
	MediaRef     string      `gorm:"column:file_id"`
}

// HasRequest reports whether the user already submitted a request.
func (u User) HasRequest() bool {
	return u.RequestKind != ""
}

// FullName joins first and last name, skipping the empty parts.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Contact is the payload of a shared contact card.
type Contact struct {
	TelegramID int64
	FirstName  string
	LastName   string
	Phone      string
}

// Submission is a classified request ready to be stored.
type Submission struct {
	Kind     RequestKind
	Summary  string
	MediaRef string
}
