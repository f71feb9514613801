package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
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

const snapshotTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireToken(); err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db, repository.FilePath(cfg.DatabasePath),
		repository.WithReshareReset(cfg.ResetOnReshare))

	var exporter bot.Exporter
	if cfg.Sheets.Enabled() {
		client, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
		if err != nil {
			log.Printf("[warn] export disabled: %v", err)
		} else {
			exporter = service.NewExportService(client, time.Local)
		}
	} else {
		log.Println("[warn] export disabled: GoogleSheetsID is not set")
	}

	api, err := bot.NewAPI(cfg.TelegramToken, cfg.Transport.SendTimeout)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	telegramBot := bot.New(api, userRepo, exporter, cfg)
	defer telegramBot.Close()
	telegramBot.PublishCommands()

	if cfg.Snapshot.Enabled() {
		stopSnapshots, err := startSnapshots(ctx, cfg, userRepo)
		if err != nil {
			log.Printf("[warn] snapshots disabled: %v", err)
		} else {
			defer stopSnapshots()
		}
	} else {
		log.Println("[warn] snapshots disabled: BACKUPTO is not set")
	}

	log.Println("Intake bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

func newArchive(ctx context.Context, cfg config.ArchiveConfig) service.SnapshotArchive {
	if !cfg.Enabled() {
		return nil
	}
	archive, err := s3minio.Connect(ctx, cfg)
	if err != nil {
		log.Printf("[warn] archive disabled: %v", err)
		return nil
	}
	return archive
}

// startSnapshots schedules snapshot delivery. Uploads go through their own
// client and outbox so the larger upload timeout never applies to chat messages.
func startSnapshots(ctx context.Context, cfg config.Config, src service.SnapshotSource) (func(), error) {
	uploadAPI, err := bot.NewAPI(cfg.TelegramToken, cfg.Transport.UploadTimeout)
	if err != nil {
		return nil, err
	}
	uploads := bot.NewOutbox(uploadAPI, cfg.Transport.RetryDelay)

	var opts []service.SnapshotOption
	if archive := newArchive(ctx, cfg.Archive); archive != nil {
		opts = append(opts, service.WithArchive(archive))
	}
	sink := bot.NewDocumentSender(uploads, cfg.Snapshot.ChatID)
	snapshots := service.NewSnapshotService(src, sink, opts...)

	scheduler := service.NewSchedulerService(time.Local)
	job := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if _, err := snapshots.Run(jobCtx, false); err != nil {
			log.Printf("snapshot: %v", err)
		}
	}
	if cfg.Snapshot.At != "" {
		if _, err := scheduler.ScheduleDaily(cfg.Snapshot.At, job); err != nil {
			return nil, fmt.Errorf("schedule snapshot: %w", err)
		}
		log.Printf("[info] daily snapshot at %s to %d", cfg.Snapshot.At, cfg.Snapshot.ChatID)
	}
	if cfg.Snapshot.Hourly {
		if _, err := scheduler.ScheduleInterval(time.Hour, job); err != nil {
			return nil, fmt.Errorf("schedule hourly snapshot: %w", err)
		}
		log.Println("[info] hourly snapshot enabled")
	}
	if scheduler.Entries() == 0 {
		uploads.Close()
		return nil, fmt.Errorf("neither SNAPSHOT_AT nor SNAPSHOT_HOURLY is set")
	}

	scheduler.Start()
	return func() {
		scheduler.Stop()
		uploads.Close()
	}, nil
}
