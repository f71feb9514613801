package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"intake-bot/internal/model"
)

// SheetHeader is the first row of an empty export sheet.
var SheetHeader = []string{
	"ID",
	"Telegram ID",
	"Имя",
	"Фамилия",
	"Телефон",
	"Дата регистрации",
	"Запрос",
	"Тип запроса",
	"ID файла",
}

// SheetBackend is the spreadsheet the records are exported to.
type SheetBackend interface {
	Read(ctx context.Context, rng string) ([][]string, error)
	Write(ctx context.Context, rng string, rows [][]string) error
	Append(ctx context.Context, rng string, rows [][]string) error
	Title(ctx context.Context) (string, error)
	URL() string
}

// SheetInfo describes the export target for admin replies.
type SheetInfo struct {
	Title string
	URL   string
}

// ExportResult summarizes one export run.
type ExportResult struct {
	Total         int
	Appended      int
	HeaderWritten bool
}

// ExportService appends records missing from the sheet, keyed by Telegram id.
type ExportService struct {
	backend SheetBackend
	loc     *time.Location
}

func NewExportService(backend SheetBackend, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{backend: backend, loc: loc}
}

// Info fetches the sheet title; the URL is always known.
func (s *ExportService) Info(ctx context.Context) (SheetInfo, error) {
	info := SheetInfo{URL: s.backend.URL()}
	title, err := s.backend.Title(ctx)
	if err != nil {
		return info, fmt.Errorf("sheet info: %w", err)
	}
	info.Title = title
	return info, nil
}

// Export never rewrites or deletes rows; a repeated run on the same records appends nothing.
func (s *ExportService) Export(ctx context.Context, users []model.User) (ExportResult, error) {
	result := ExportResult{Total: len(users)}
	if len(users) == 0 {
		log.Printf("[info] export: no users to export")
		return result, nil
	}

	existing, err := s.backend.Read(ctx, "A:Z")
	if err != nil {
		return result, fmt.Errorf("read sheet: %w", err)
	}

	if len(existing) == 0 {
		if err := s.backend.Write(ctx, "A1", [][]string{SheetHeader}); err != nil {
			return result, fmt.Errorf("write header: %w", err)
		}
		result.HeaderWritten = true

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, UserRow(u, s.loc))
		}
		if err := s.backend.Append(ctx, "A2", rows); err != nil {
			return result, fmt.Errorf("append rows: %w", err)
		}
		result.Appended = len(rows)
		log.Printf("[info] export: sheet was empty, exported %d users", result.Appended)
		return result, nil
	}

	present := make(map[int64]struct{}, len(existing))
	for _, row := range existing {
		if len(row) < 2 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			// header or foreign row
			continue
		}
		present[id] = struct{}{}
	}

	var rows [][]string
	for _, u := range users {
		if _, ok := present[u.TelegramID]; ok {
			continue
		}
		rows = append(rows, UserRow(u, s.loc))
	}
	if len(rows) == 0 {
		log.Printf("[info] export: all %d users already in sheet", len(users))
		return result, nil
	}

	if err := s.backend.Append(ctx, "A", rows); err != nil {
		return result, fmt.Errorf("append rows: %w", err)
	}
	result.Appended = len(rows)
	log.Printf("[info] export: appended %d new users", result.Appended)
	return result, nil
}

// UserRow renders a record in SheetHeader column order.
func UserRow(u model.User, loc *time.Location) []string {
	registered := ""
	if !u.RegisteredAt.IsZero() {
		registered = u.RegisteredAt.In(loc).Format("2006-01-02 15:04:05")
	}
	return []string{
		strconv.FormatUint(uint64(u.ID), 10),
		strconv.FormatInt(u.TelegramID, 10),
		u.FirstName,
		u.LastName,
		u.Phone,
		registered,
		u.Request,
		string(u.RequestKind),
		u.MediaRef,
	}
}
