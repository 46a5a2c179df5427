package server_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minio-vault/minio-vault/server"
	"github.com/minio-vault/minio-vault/store"
)

func TestMetadataStubServesRoleAndCredentials(t *testing.T) {
	srv := httptest.NewServer(server.NewHandler(server.Config{
		RoleName: "stub-role",
		TTL:      time.Hour,
		Options: store.Options{
			AccessKey:    "minio",
			SecretKey:    "minio123",
			SessionToken: "tok",
		},
	}))
	defer srv.Close()

	meta := store.NewMetadataClient(srv.URL + "/latest/meta-data")

	role, err := meta.RoleName(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != "stub-role" {
		t.Errorf("expected role stub-role, got %q", role)
	}

	creds, err := meta.Credentials(context.Background(), role)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessKeyID != "minio" || creds.SecretAccessKey != "minio123" || creds.SessionToken != "tok" {
		t.Errorf("unexpected credentials: %+v", creds)
	}

	until := time.Until(creds.Expiration)
	if until < 55*time.Minute || until > 65*time.Minute {
		t.Errorf("expected expiration about an hour out, got %s", until)
	}
}

func TestMetadataStubDefaults(t *testing.T) {
	srv := httptest.NewServer(server.NewHandler(server.Config{}))
	defer srv.Close()

	meta := store.NewMetadataClient(srv.URL + "/latest/meta-data")

	role, err := meta.RoleName(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != "local-role" {
		t.Errorf("expected default role local-role, got %q", role)
	}

	if _, err := meta.Credentials(context.Background(), role); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
