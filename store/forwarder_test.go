package store_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/minio-vault/minio-vault/store"
	"github.com/minio/minio-go/v7"
)

const listBucketsXML = `<?xml version="1.0" encoding="UTF-8"?>
<ListAllMyBucketsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Owner><ID>minio</ID><DisplayName>minio</DisplayName></Owner>
  <Buckets>
    <Bucket><Name>mlpipeline</Name><CreationDate>2024-01-01T00:00:00.000Z</CreationDate></Bucket>
    <Bucket><Name>artifacts</Name><CreationDate>2024-01-02T00:00:00.000Z</CreationDate></Bucket>
  </Buckets>
</ListAllMyBucketsResult>`

// newStorageFixture serves just enough of the S3 API for the forwarder
// tests and counts how many requests reach it.
func newStorageFixture(t *testing.T) (opts store.Options, hits *int32) {
	t.Helper()

	var count int32
	mux := http.NewServeMux()
	mux.HandleFunc("/mlpipeline/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, listBucketsXML)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fixed region keeps minio-go from probing the bucket location.
	return store.Options{
		Endpoint:  host,
		Port:      port,
		Region:    "us-east-1",
		AccessKey: "minio",
		SecretKey: "minio123",
	}, &count
}

func TestForwarderDelegatesAfterResolving(t *testing.T) {
	opts, hits := newStorageFixture(t)

	m, err := store.NewManager(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fwd := store.NewForwarder(m)

	buckets, err := fwd.ListBuckets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	if len(names) != 2 || names[0] != "mlpipeline" || names[1] != "artifacts" {
		t.Errorf("unexpected buckets %v", names)
	}

	exists, err := fwd.BucketExists(context.Background(), "mlpipeline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected the bucket to exist")
	}

	if got := atomic.LoadInt32(hits); got != 2 {
		t.Errorf("expected 2 storage requests, got %d", got)
	}
}

// deadMetadataOptions qualify for Dynamic mode but point at a metadata
// address that refuses connections, so every acquire fails.
func deadMetadataOptions(t *testing.T) store.Options {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()
	return store.Options{Endpoint: "s3.amazonaws.com", SecretKey: "minio123", MetadataBase: base}
}

func TestForwarderFailsWithAcquireCause(t *testing.T) {
	m, err := store.NewManager(deadMetadataOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fwd := store.NewForwarder(m)

	_, err = fwd.BucketExists(context.Background(), "mlpipeline")
	if !errors.Is(err, store.ErrNoClient) {
		t.Errorf("expected ErrNoClient, got %v", err)
	}
	if !errors.Is(err, store.ErrRoleResolution) {
		t.Errorf("expected ErrRoleResolution as the cause, got %v", err)
	}

	if err := fwd.RemoveObject(context.Background(), "mlpipeline", "obj", minio.RemoveObjectOptions{}); !errors.Is(err, store.ErrNoClient) {
		t.Errorf("expected ErrNoClient, got %v", err)
	}
}

func TestForwarderListObjectsRelaysAcquireFailure(t *testing.T) {
	m, err := store.NewManager(deadMetadataOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fwd := store.NewForwarder(m)

	var got []minio.ObjectInfo
	for obj := range fwd.ListObjects(context.Background(), "mlpipeline", minio.ListObjectsOptions{}) {
		got = append(got, obj)
	}
	if len(got) != 1 {
		t.Fatalf("expected a single error entry, got %d", len(got))
	}
	if !errors.Is(got[0].Err, store.ErrNoClient) {
		t.Errorf("expected ErrNoClient, got %v", got[0].Err)
	}
}
