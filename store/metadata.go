package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio-vault/minio-vault/iso8601"
)

// DefaultMetadataBase is the EC2 instance-metadata root.
const DefaultMetadataBase = "http://169.254.169.254/latest/meta-data"

// roleListingTimeout bounds the role-listing request. Outside a cloud
// environment nothing answers on the metadata address, so this is the
// worst case a first acquire can add before falling through to "no role".
const roleListingTimeout = 500 * time.Millisecond

// Credentials is a credential set issued by the metadata service for an
// instance role.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// credentialsDocument is the wire form served at
// /iam/security-credentials/{role}. Field names match the document keys.
type credentialsDocument struct {
	AccessKeyId     string
	SecretAccessKey string
	Token           string
	Expiration      string
}

// MetadataClient issues the two instance-metadata requests the manager
// needs. Base and HTTPClient are injectable for tests.
type MetadataClient struct {
	Base        string
	HTTPClient  *http.Client
	RoleTimeout time.Duration
}

func NewMetadataClient(base string) *MetadataClient {
	if base == "" {
		base = DefaultMetadataBase
	}
	return &MetadataClient{
		Base:        strings.TrimSuffix(base, "/"),
		HTTPClient:  http.DefaultClient,
		RoleTimeout: roleListingTimeout,
	}
}

// RoleName lists the instance's security credentials and returns the role
// name. The request runs under a hard timeout; a timeout or non-2xx
// response means no role is available, it is not retried here.
func (c *MetadataClient) RoleName(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.RoleTimeout)
	defer cancel()

	body, err := c.get(ctx, c.Base+"/iam/security-credentials/")
	if err != nil {
		return "", err
	}

	role := strings.TrimSpace(string(body))
	if role == "" {
		return "", fmt.Errorf("role listing at %s returned no roles", c.Base)
	}
	return role, nil
}

// Credentials fetches the credential document for a role. No timeout beyond
// the transport's own; on an instance this endpoint answers link-locally.
func (c *MetadataClient) Credentials(ctx context.Context, role string) (Credentials, error) {
	body, err := c.get(ctx, c.Base+"/iam/security-credentials/"+role)
	if err != nil {
		return Credentials{}, err
	}

	var doc credentialsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return Credentials{}, fmt.Errorf("parsing credentials for role %s: %w", role, err)
	}

	expiration, err := iso8601.Parse(doc.Expiration)
	if err != nil {
		return Credentials{}, fmt.Errorf("parsing credential expiration %q: %w", doc.Expiration, err)
	}

	return Credentials{
		AccessKeyID:     doc.AccessKeyId,
		SecretAccessKey: doc.SecretAccessKey,
		SessionToken:    doc.Token,
		Expiration:      expiration,
	}, nil
}

func (c *MetadataClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
