package store

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectStore is the storage surface callers use. *minio.Client satisfies it
// directly; Forwarder satisfies it by resolving a valid client first.
type ObjectStore interface {
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error)
}

var (
	_ ObjectStore = (*minio.Client)(nil)
	_ ObjectStore = (*Forwarder)(nil)
)

// Forwarder forwards object-storage operations through a Manager, resolving
// a valid client before every single call. It never holds a client across
// calls, so expired credentials are always detected before use. Operation
// results and errors are relayed verbatim; nothing is retried.
type Forwarder struct {
	Manager *Manager
}

func NewForwarder(m *Manager) *Forwarder {
	return &Forwarder{Manager: m}
}

func (f *Forwarder) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return err
	}
	return client.MakeBucket(ctx, bucket, opts)
}

func (f *Forwarder) BucketExists(ctx context.Context, bucket string) (bool, error) {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return false, err
	}
	return client.BucketExists(ctx, bucket)
}

func (f *Forwarder) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.ListBuckets(ctx)
}

// ListObjects reports an acquire failure the way minio reports listing
// errors, as a single ObjectInfo with Err set.
func (f *Forwarder) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Err: err}
		close(ch)
		return ch
	}
	return client.ListObjects(ctx, bucket, opts)
}

func (f *Forwarder) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error) {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetObject(ctx, bucket, object, opts)
}

func (f *Forwarder) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	return client.PutObject(ctx, bucket, object, r, size, opts)
}

func (f *Forwarder) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return minio.ObjectInfo{}, err
	}
	return client.StatObject(ctx, bucket, object, opts)
}

func (f *Forwarder) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return err
	}
	return client.RemoveObject(ctx, bucket, object, opts)
}

func (f *Forwarder) PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error) {
	client, err := f.Manager.AcquireClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.PresignedGetObject(ctx, bucket, object, expires, params)
}
