package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/singleflight"
)

// Mode selects how a manager sources credentials. It is decided once at
// construction and never changes for a manager instance.
type Mode int

const (
	// Persistent builds one client from static keys and reuses it forever.
	Persistent Mode = iota
	// Dynamic rebuilds the client from instance-metadata credentials as
	// they expire.
	Dynamic
)

func (m Mode) String() string {
	if m == Dynamic {
		return "dynamic"
	}
	return "persistent"
}

// Endpoints that qualify for instance-profile credential lookup. Any other
// endpoint uses static keys regardless of what was supplied.
var dynamicEndpoints = map[string]bool{
	"s3.amazonaws.com":    true,
	"s3.amazonaws.com.cn": true,
}

// canonicalEndpoint is the endpoint dynamic clients are bound to.
const canonicalEndpoint = "s3.amazonaws.com"

var (
	// ErrRoleResolution marks a failed or empty role listing.
	ErrRoleResolution = errors.New("no instance role available")
	// ErrCredentialFetch marks a failed or malformed credential fetch for
	// an already known role.
	ErrCredentialFetch = errors.New("fetching role credentials failed")
	// ErrNoClient is reported by AcquireClient when no client can be
	// produced. It always wraps the cause.
	ErrNoClient = errors.New("no storage client available")
)

// Manager owns a storage client handle and the credentials behind it. In
// Persistent mode the handle is built once and never replaced. In Dynamic
// mode the handle carries an expiration; an expired or absent handle is
// replaced via a single-flighted refresh against the metadata service.
//
// The cached client, its expiration and the role name are mutated only
// inside the refresh critical section.
type Manager struct {
	opts     Options
	mode     Mode
	metadata *MetadataClient

	group singleflight.Group

	mu        sync.Mutex
	client    *minio.Client
	expires   time.Time
	role      string
	accessKey string
}

// NewManager decides the credential mode for the given options. Static keys
// always win: Dynamic is selected only for a recognized endpoint with at
// least one key missing. In Persistent mode the client is built eagerly
// here and cached for the life of the manager.
func NewManager(opts Options) (*Manager, error) {
	m := &Manager{
		opts:     opts,
		metadata: NewMetadataClient(opts.MetadataBase),
	}

	if dynamicEndpoints[opts.Endpoint] && (opts.AccessKey == "" || opts.SecretKey == "") {
		m.mode = Dynamic
		log.Printf("Using instance-profile credentials for %s", opts.Endpoint)
		return m, nil
	}

	m.mode = Persistent
	client, err := minio.New(opts.Address(), &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		Secure: bool(opts.UseSSL),
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("building storage client for %s: %w", opts.Address(), err)
	}
	m.client = client
	m.accessKey = opts.AccessKey
	log.Printf("Using static credentials %s for %s", FormatKeyForDisplay(opts.AccessKey), opts.Address())
	return m, nil
}

// Mode reports the credential mode decided at construction.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Expires reports when the cached client's credentials lapse. The zero time
// means the client never expires (Persistent mode) or nothing is cached yet.
func (m *Manager) Expires() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expires
}

// AccessKey returns the access key of the active credential set, or ""
// before the first successful refresh in Dynamic mode.
func (m *Manager) AccessKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessKey
}

// AcquireClient returns a client that is valid at the time of the call. In
// Persistent mode this is always the eagerly built client, with no I/O. In
// Dynamic mode an expired or absent client triggers a refresh; concurrent
// callers converge on one in-flight refresh and share its outcome. A failed
// refresh leaves the manager ready to retry on the next call.
func (m *Manager) AcquireClient(ctx context.Context) (*minio.Client, error) {
	if m.mode == Persistent {
		return m.client, nil
	}

	if client := m.cached(); client != nil {
		return client, nil
	}

	v, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		// A refresh may have landed between the cache miss and joining
		// the flight.
		if client := m.cached(); client != nil {
			return client, nil
		}
		return m.refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoClient, err)
	}
	return v.(*minio.Client), nil
}

func (m *Manager) cached() *minio.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil && time.Now().Before(m.expires) {
		return m.client
	}
	return nil
}

func (m *Manager) refresh(ctx context.Context) (*minio.Client, error) {
	role, err := m.roleName(ctx)
	if err != nil {
		return nil, err
	}

	creds, err := m.metadata.Credentials(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialFetch, err)
	}

	client, err := minio.New(canonicalEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		Secure: true,
		Region: m.opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("building storage client for %s: %w", canonicalEndpoint, err)
	}

	m.mu.Lock()
	m.client = client
	m.expires = creds.Expiration
	m.accessKey = creds.AccessKeyID
	m.mu.Unlock()

	log.Printf("Using role credentials %s, expires in %s",
		FormatKeyForDisplay(creds.AccessKeyID), time.Until(creds.Expiration).Truncate(time.Second))
	return client, nil
}

// roleName returns the instance role, fetching it on first use. The role
// identity is stable for the process lifetime: once resolved it is never
// re-fetched, even when a later credential fetch fails.
func (m *Manager) roleName(ctx context.Context) (string, error) {
	m.mu.Lock()
	role := m.role
	m.mu.Unlock()
	if role != "" {
		return role, nil
	}

	role, err := m.metadata.RoleName(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRoleResolution, err)
	}

	m.mu.Lock()
	m.role = role
	m.mu.Unlock()
	return role, nil
}

// FormatKeyForDisplay masks an access key, keeping the last four characters.
func FormatKeyForDisplay(k string) string {
	if len(k) < 4 {
		return "****************"
	}
	return fmt.Sprintf("****************%s", k[len(k)-4:])
}
