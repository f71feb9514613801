package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrStoreMissing means the store file does not exist, so there is nothing to ship.
var ErrStoreMissing = errors.New("store file not found")

// SnapshotSource is the store being backed up.
type SnapshotSource interface {
	Path() string
	LastWrite() time.Time
	Snapshot(ctx context.Context, dst string) error
}

// SnapshotSink delivers a snapshot file to the admin destination.
type SnapshotSink interface {
	SendSnapshot(ctx context.Context, path, caption string) error
}

// SnapshotArchive keeps an extra copy of every delivered snapshot.
type SnapshotArchive interface {
	Upload(ctx context.Context, path, name string) error
}

// SnapshotService ships the store file once it changed during the day.
type SnapshotService struct {
	src     SnapshotSource
	sink    SnapshotSink
	archive SnapshotArchive
	tempDir string
	now     func() time.Time
}

// SnapshotOption configures a SnapshotService.
type SnapshotOption func(*SnapshotService)

func WithArchive(archive SnapshotArchive) SnapshotOption {
	return func(s *SnapshotService) { s.archive = archive }
}

func WithTempDir(dir string) SnapshotOption {
	return func(s *SnapshotService) { s.tempDir = dir }
}

func WithSnapshotClock(now func() time.Time) SnapshotOption {
	return func(s *SnapshotService) { s.now = now }
}

func NewSnapshotService(src SnapshotSource, sink SnapshotSink, opts ...SnapshotOption) *SnapshotService {
	s := &SnapshotService{src: src, sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.tempDir == "" {
		s.tempDir = os.TempDir()
	}
	return s
}

// ChangedToday reports whether the store was written on the current local date.
func (s *SnapshotService) ChangedToday() bool {
	last := s.src.LastWrite()
	if last.IsZero() {
		return false
	}
	now := s.now()
	y1, m1, d1 := last.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Run ships a snapshot; force skips the changed-today check. It reports whether a
// snapshot was delivered.
func (s *SnapshotService) Run(ctx context.Context, force bool) (bool, error) {
	path := s.src.Path()
	if path == "" {
		return false, ErrStoreMissing
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, ErrStoreMissing
		}
		return false, fmt.Errorf("stat store: %w", err)
	}

	if !force && !s.ChangedToday() {
		log.Printf("[info] snapshot: store unchanged today, skipping")
		return false, nil
	}

	now := s.now()
	name := SnapshotName(path, now)
	dst := filepath.Join(s.tempDir, name)
	if err := s.src.Snapshot(ctx, dst); err != nil {
		return false, err
	}
	defer os.Remove(dst)

	caption := fmt.Sprintf("📦 Резервная копия базы данных от %s", now.Format("02.01.2006"))
	if err := s.sink.SendSnapshot(ctx, dst, caption); err != nil {
		return false, fmt.Errorf("send snapshot: %w", err)
	}
	log.Printf("[info] snapshot: sent %s", name)

	if s.archive != nil {
		if err := s.archive.Upload(ctx, dst, name); err != nil {
			log.Printf("snapshot archive: %v", err)
		}
	}
	return true, nil
}

// SnapshotName builds "<base>_backup_YYYYMMDD_HHMMSS<ext>" for a store path.
func SnapshotName(storePath string, at time.Time) string {
	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".db"
	}
	return fmt.Sprintf("%s_backup_%s%s", stem, at.Format("20060102_150405"), ext)
}
