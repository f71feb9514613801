package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"intake-bot/internal/model"
)

// ErrNotFound is returned when no record matches the Telegram id.
var ErrNotFound = errors.New("user not found")

// Option configures a UserRepository.
type Option func(*UserRepository)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *UserRepository) { r.now = now }
}

// WithReshareReset makes a repeated contact share reset registration time and request fields.
func WithReshareReset(reset bool) Option {
	return func(r *UserRepository) { r.resetOnReshare = reset }
}

// UserRepository is the record store: one row per Telegram user.
type UserRepository struct {
	db             *gorm.DB
	path           string
	now            func() time.Time
	resetOnReshare bool
	lastWrite      atomic.Int64
}

func NewUserRepository(db *gorm.DB, path string, opts ...Option) *UserRepository {
	r := &UserRepository{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if path != "" {
		if info, err := os.Stat(path); err == nil {
			r.lastWrite.Store(info.ModTime().UnixNano())
		}
	}
	return r
}

// UpsertContact creates the user on first share and refreshes names and phone afterwards.
func (r *UserRepository) UpsertContact(ctx context.Context, contact model.Contact) (*model.User, error) {
	var user model.User
	now := r.now().UTC().Truncate(time.Second)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("telegram_id = ?", contact.TelegramID).First(&user).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"first_name": contact.FirstName,
				"last_name":  contact.LastName,
				"phone":      contact.Phone,
			}
			if r.resetOnReshare {
				updates["registration_timestamp"] = now
				updates["request"] = ""
				updates["request_type"] = ""
				updates["file_id"] = ""
			}
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return fmt.Errorf("update user: %w", err)
			}
			user.FirstName, user.LastName, user.Phone = contact.FirstName, contact.LastName, contact.Phone
			if r.resetOnReshare {
				user.RegisteredAt = now
				user.Request, user.RequestKind, user.MediaRef = "", "", ""
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = model.User{
				TelegramID:   contact.TelegramID,
				FirstName:    contact.FirstName,
				LastName:     contact.LastName,
				Phone:        contact.Phone,
				RegisteredAt: now,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("find user: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	r.touch()
	return &user, nil
}

// UpdateRequest overwrites the request fields of an existing user.
func (r *UserRepository) UpdateRequest(ctx context.Context, telegramID int64, sub model.Submission) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"request":      sub.Summary,
			"request_type": string(sub.Kind),
			"file_id":      sub.MediaRef,
		})
	if res.Error != nil {
		return fmt.Errorf("update request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.touch()
	return nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAll returns every user, newest registration first.
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("registration_timestamp DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListToday returns users registered on the current local calendar day.
func (r *UserRepository) ListToday(ctx context.Context) ([]model.User, error) {
	now := r.now()
	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("registration_timestamp >= ? AND registration_timestamp < ?", start.UTC(), end.UTC()).
		Order("registration_timestamp DESC, id DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Path is the backing file of the store.
func (r *UserRepository) Path() string {
	return r.path
}

// LastWrite is the time of the latest successful write, seeded from the file mtime.
func (r *UserRepository) LastWrite() time.Time {
	nanos := r.lastWrite.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// Snapshot writes a consistent copy of the database to dst.
func (r *UserRepository) Snapshot(ctx context.Context, dst string) error {
	if r.path == "" {
		return fmt.Errorf("snapshot: store has no backing file")
	}
	if _, err := os.Stat(r.path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("snapshot: clear target: %w", err)
	}
	if err := r.db.WithContext(ctx).Exec("VACUUM INTO ?", dst).Error; err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

func (r *UserRepository) touch() {
	r.lastWrite.Store(r.now().UnixNano())
}
