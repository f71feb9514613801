package s3minio

import (
	"testing"

	"intake-bot/internal/config"
)

func TestNewConn_RequiresConfig(t *testing.T) {
	if _, err := NewConn(config.ArchiveConfig{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestNewConn_BuildsClient(t *testing.T) {
	client, err := NewConn(config.ArchiveConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "snapshots",
	})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	if client.EndpointURL().Host != "localhost:9000" {
		t.Fatalf("unexpected endpoint %s", client.EndpointURL())
	}
	if New(client, "snapshots").Bucket != "snapshots" {
		t.Fatalf("bucket not kept")
	}
}
