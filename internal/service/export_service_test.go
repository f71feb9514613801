package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"intake-bot/internal/model"
)

type memorySheet struct {
	rows     [][]string
	writes   int
	appends  int
	failRead error
}

func (m *memorySheet) Read(_ context.Context, _ string) ([][]string, error) {
	if m.failRead != nil {
		return nil, m.failRead
	}
	out := make([][]string, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memorySheet) Write(_ context.Context, _ string, rows [][]string) error {
	m.writes++
	if len(m.rows) == 0 {
		m.rows = append(m.rows, rows...)
		return nil
	}
	copy(m.rows, rows)
	return nil
}

func (m *memorySheet) Append(_ context.Context, _ string, rows [][]string) error {
	m.appends++
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memorySheet) Title(context.Context) (string, error) { return "Заявки", nil }

func (m *memorySheet) URL() string { return "https://docs.google.com/spreadsheets/d/test" }

func sampleUsers() []model.User {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return []model.User{
		{ID: 2, TelegramID: 222, FirstName: "Boris", Phone: "+7911", RegisteredAt: at.Add(time.Hour)},
		{ID: 1, TelegramID: 111, FirstName: "Anna", Phone: "+7900", RegisteredAt: at,
			Request: "Текст: Нужна консультация", RequestKind: model.KindText},
	}
}

func TestExport_EmptySheetWritesHeaderAndRows(t *testing.T) {
	sheet := &memorySheet{}
	svc := NewExportService(sheet, time.UTC)

	res, err := svc.Export(context.Background(), sampleUsers())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !res.HeaderWritten || res.Appended != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(sheet.rows) != 3 || sheet.rows[0][1] != "Telegram ID" {
		t.Fatalf("unexpected sheet: %v", sheet.rows)
	}
	want := []string{"1", "111", "Anna", "", "+7900", "2026-10-19 09:00:00", "Текст: Нужна консультация", "text", ""}
	got := sheet.rows[2]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExport_IsIdempotent(t *testing.T) {
	sheet := &memorySheet{}
	svc := NewExportService(sheet, time.UTC)
	users := sampleUsers()

	if _, err := svc.Export(context.Background(), users); err != nil {
		t.Fatalf("first Export: %v", err)
	}
	before := len(sheet.rows)

	res, err := svc.Export(context.Background(), users)
	if err != nil {
		t.Fatalf("second Export: %v", err)
	}
	if res.Appended != 0 || len(sheet.rows) != before {
		t.Fatalf("second export appended rows: %+v, sheet %d -> %d", res, before, len(sheet.rows))
	}
	if sheet.writes != 1 {
		t.Fatalf("header must be written once, got %d writes", sheet.writes)
	}
}

func TestExport_AppendsOnlyNewRecords(t *testing.T) {
	sheet := &memorySheet{rows: [][]string{
		SheetHeader,
		{"1", "111", "Anna"},
		{"x", "not-a-number"},
		{"short"},
	}}
	svc := NewExportService(sheet, time.UTC)

	res, err := svc.Export(context.Background(), sampleUsers())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.HeaderWritten || res.Appended != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	last := sheet.rows[len(sheet.rows)-1]
	if last[1] != "222" {
		t.Fatalf("expected Boris appended, got %v", last)
	}
}

func TestExport_NoUsersTouchesNothing(t *testing.T) {
	sheet := &memorySheet{failRead: errors.New("must not read")}
	svc := NewExportService(sheet, time.UTC)

	res, err := svc.Export(context.Background(), nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Appended != 0 || sheet.writes != 0 || sheet.appends != 0 {
		t.Fatalf("unexpected activity: %+v", res)
	}
}

func TestExport_ReadFailure(t *testing.T) {
	sheet := &memorySheet{failRead: errors.New("quota exceeded")}
	svc := NewExportService(sheet, time.UTC)

	if _, err := svc.Export(context.Background(), sampleUsers()); err == nil {
		t.Fatalf("expected read error")
	}
	if sheet.appends != 0 {
		t.Fatalf("nothing must be appended after a failed read")
	}
}

func TestExportInfo(t *testing.T) {
	svc := NewExportService(&memorySheet{}, nil)
	info, err := svc.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Title != "Заявки" || info.URL == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
}
