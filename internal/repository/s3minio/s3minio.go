package s3minio

import (
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"intake-bot/internal/config"
)

func NewConn(cfg config.ArchiveConfig) (*minio.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("archive is not configured")
	}
	client, err := minio.New(
		cfg.Endpoint, &minio.Options{
			Creds: credentials.NewStaticV4(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			),
			Secure: cfg.UseSSL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return client, nil
}

// SnapshotArchive stores snapshot files in one bucket.
type SnapshotArchive struct {
	Session *minio.Client
	Bucket  string
}

func New(sess *minio.Client, bucket string) *SnapshotArchive {
	return &SnapshotArchive{
		Session: sess,
		Bucket:  bucket,
	}
}

// EnsureBucket creates the bucket when it is missing.
func (s *SnapshotArchive) EnsureBucket(ctx context.Context) error {
	found, err := s.Session.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if found {
		return nil
	}
	if err := s.Session.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.Bucket, err)
	}
	log.Printf("[info] archive: bucket %s created", s.Bucket)
	return nil
}

func (s *SnapshotArchive) Upload(ctx context.Context, path, name string) error {
	info, err := s.Session.FPutObject(ctx, s.Bucket, name, path, minio.PutObjectOptions{
		ContentType: "application/vnd.sqlite3",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	log.Printf("[info] archive: uploaded %s (%d bytes)", info.Key, info.Size)
	return nil
}

// Connect builds a ready archive: client, wrapper and bucket.
func Connect(ctx context.Context, cfg config.ArchiveConfig) (*SnapshotArchive, error) {
	client, err := NewConn(cfg)
	if err != nil {
		return nil, err
	}
	archive := New(client, cfg.Bucket)
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}
