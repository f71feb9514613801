package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intake-bot/internal/bot"
	"intake-bot/internal/config"
	"intake-bot/internal/repository"
	"intake-bot/internal/repository/s3minio"
	"intake-bot/internal/service"
	"intake-bot/internal/sheets"
)

const usage = `intakectl - operational commands for the intake bot

Usage:
  intakectl backup [--force]   send a store snapshot to BACKUPTO now
  intakectl export             export new records to Google Sheets
  intakectl export test        check the spreadsheet connection
  intakectl export help        show export requirements
  intakectl migrate            add missing columns to an existing store
  intakectl check              report store file and table health
`

const exportHelp = `📊 Экспорт данных в Google Sheets

Использование:
  intakectl export          - Экспорт всех данных
  intakectl export test     - Тест подключения
  intakectl export help     - Показать эту справку

Требования:
  - Переменная GoogleSheetsID (в окружении или файле .env)
  - Файл с учетными данными сервисного аккаунта (GOOGLE_CREDENTIALS)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] .env: %v", err)
	}

	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return 1
	}

	switch strings.ToLower(args[0]) {
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return 0
	case "export":
		if len(args) > 1 {
			switch strings.ToLower(args[1]) {
			case "help":
				fmt.Fprint(out, exportHelp)
				return 0
			case "test":
				return withConfig(out, func(cfg config.Config) int { return exportTest(ctx, cfg, out) })
			default:
				fmt.Fprintf(out, "❌ Неизвестная команда: %s\n\n%s", args[1], exportHelp)
				return 1
			}
		}
		return withConfig(out, func(cfg config.Config) int { return exportRun(ctx, cfg, out) })
	case "backup":
		fs := flag.NewFlagSet("backup", flag.ContinueOnError)
		fs.SetOutput(out)
		force := fs.Bool("force", false, "send even if the store did not change today")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		return withConfig(out, func(cfg config.Config) int { return backup(ctx, cfg, *force, out) })
	case "migrate":
		return withConfig(out, func(cfg config.Config) int { return migrate(ctx, cfg, out) })
	case "check":
		return withConfig(out, func(cfg config.Config) int { return check(ctx, cfg, out) })
	default:
		fmt.Fprintf(out, "unknown command %q\n\n%s", args[0], usage)
		return 1
	}
}

func withConfig(out io.Writer, fn func(config.Config) int) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "❌ config: %v\n", err)
		return 1
	}
	return fn(cfg)
}

func storeExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func exportTest(ctx context.Context, cfg config.Config, out io.Writer) int {
	if !cfg.Sheets.Enabled() {
		fmt.Fprintln(out, "❌ Не задан GoogleSheetsID в переменных окружения")
		return 1
	}
	client, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		fmt.Fprintf(out, "❌ Ошибка подключения: %v\n", err)
		return 1
	}
	info, err := service.NewExportService(client, time.Local).Info(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Ошибка подключения: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "✅ Подключение к Google Sheets успешно!")
	fmt.Fprintf(out, "📊 Таблица: %s\n🔗 Ссылка: %s\n", info.Title, info.URL)
	return 0
}

func exportRun(ctx context.Context, cfg config.Config, out io.Writer) int {
	if !cfg.Sheets.Enabled() {
		fmt.Fprintln(out, "❌ Не задан GoogleSheetsID в переменных окружения")
		return 1
	}
	if !storeExists(cfg.DatabasePath) {
		fmt.Fprintf(out, "❌ Файл базы данных не найден: %s\n", cfg.DatabasePath)
		return 1
	}

	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	userRepo := repository.NewUserRepository(db, repository.FilePath(cfg.DatabasePath))

	client, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		fmt.Fprintf(out, "❌ Ошибка подключения: %v\n", err)
		return 1
	}
	exporter := service.NewExportService(client, time.Local)

	fmt.Fprintln(out, "🚀 Начинаем экспорт данных в Google Sheets...")
	if info, err := exporter.Info(ctx); err == nil {
		fmt.Fprintf(out, "📊 Таблица: %s\n🔗 Ссылка: %s\n", info.Title, info.URL)
	}

	users, err := userRepo.ListAll(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Ошибка экспорта: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "👥 Найдено %d пользователей в базе данных\n", len(users))
	if len(users) == 0 {
		fmt.Fprintln(out, "ℹ️ Нет пользователей для экспорта")
		return 0
	}

	res, err := exporter.Export(ctx, users)
	if err != nil {
		fmt.Fprintf(out, "❌ Ошибка экспорта: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "✅ Экспорт завершен успешно! Добавлено новых строк: %d\n", res.Appended)
	return 0
}

func backup(ctx context.Context, cfg config.Config, force bool, out io.Writer) int {
	if err := cfg.RequireToken(); err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	if !cfg.Snapshot.Enabled() {
		fmt.Fprintln(out, "❌ BACKUPTO is not set")
		return 1
	}
	if !storeExists(cfg.DatabasePath) {
		fmt.Fprintf(out, "❌ Файл базы данных не найден: %s\n", cfg.DatabasePath)
		return 1
	}

	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	userRepo := repository.NewUserRepository(db, repository.FilePath(cfg.DatabasePath))

	api, err := bot.NewAPI(cfg.TelegramToken, cfg.Transport.UploadTimeout)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	outbox := bot.NewOutbox(api, cfg.Transport.RetryDelay)
	defer outbox.Close()

	var opts []service.SnapshotOption
	if cfg.Archive.Enabled() {
		archive, err := s3minio.Connect(ctx, cfg.Archive)
		if err != nil {
			log.Printf("[warn] archive disabled: %v", err)
		} else {
			opts = append(opts, service.WithArchive(archive))
		}
	}
	snapshots := service.NewSnapshotService(userRepo, bot.NewDocumentSender(outbox, cfg.Snapshot.ChatID), opts...)

	sent, err := snapshots.Run(ctx, force)
	switch {
	case errors.Is(err, service.ErrStoreMissing):
		fmt.Fprintf(out, "❌ Файл базы данных не найден: %s\n", cfg.DatabasePath)
		return 1
	case err != nil:
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	case !sent:
		fmt.Fprintln(out, "ℹ️ База данных сегодня не изменялась, используйте --force")
		return 0
	}
	fmt.Fprintln(out, "✅ Резервная копия отправлена")
	return 0
}

func migrate(ctx context.Context, cfg config.Config, out io.Writer) int {
	if !storeExists(cfg.DatabasePath) {
		fmt.Fprintln(out, "База данных не найдена. Создастся новая база при первом запуске бота.")
		return 0
	}
	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	added, err := repository.Migrate(ctx, db)
	for _, what := range added {
		fmt.Fprintf(out, "Добавлено: %s\n", what)
	}
	if err != nil {
		fmt.Fprintf(out, "❌ Ошибка при миграции базы данных: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "✅ Миграция базы данных завершена успешно!")
	return 0
}

func check(ctx context.Context, cfg config.Config, out io.Writer) int {
	exists := storeExists(cfg.DatabasePath)
	var report repository.HealthReport
	if exists {
		db, err := repository.Open(cfg.DatabasePath)
		if err != nil {
			fmt.Fprintf(out, "❌ %v\n", err)
			return 1
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		report = repository.Health(ctx, db, cfg.DatabasePath)
	} else {
		report = repository.Health(ctx, nil, cfg.DatabasePath)
	}

	fmt.Fprintf(out, "Путь: %s\n", report.Path)
	if !report.Exists {
		fmt.Fprintln(out, "❌ Файл базы данных не существует")
	} else {
		fmt.Fprintf(out, "Размер: %d байт, права: %s\n", report.Size, report.Mode)
	}
	if report.DirWritable {
		fmt.Fprintln(out, "✅ Каталог доступен для записи")
	} else {
		fmt.Fprintf(out, "❌ Каталог недоступен для записи: %s\n", report.DirError)
	}
	if exists {
		if report.TableExists {
			fmt.Fprintf(out, "✅ Таблица users: %d записей\n", report.UserCount)
		} else {
			fmt.Fprintln(out, "❌ Таблица users не найдена")
		}
		if report.QueryError != "" {
			fmt.Fprintf(out, "❌ Ошибка запроса: %s\n", report.QueryError)
			return 1
		}
	}
	if !report.Exists || !report.DirWritable {
		return 1
	}
	return 0
}
