package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/minio-vault/minio-vault/iso8601"
	"github.com/minio-vault/minio-vault/store"
)

// DefaultAddr is where the metadata stub listens unless told otherwise.
const DefaultAddr = "127.0.0.1:9024"

const (
	defaultRoleName = "local-role"
	defaultTTL      = 15 * time.Minute
)

// Config describes a local instance-metadata stub. The stub serves the two
// routes a dynamic-mode manager consumes, issuing the configured static
// keys as if they were role credentials with a rolling expiration.
type Config struct {
	Addr     string
	RoleName string
	TTL      time.Duration
	Options  store.Options
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RoleName == "" {
		c.RoleName = defaultRoleName
	}
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
	return c
}

// NewHandler builds the stub's routes: the role listing and the per-role
// credential document.
func NewHandler(cfg Config) http.Handler {
	cfg = cfg.withDefaults()

	router := http.NewServeMux()
	router.HandleFunc("/latest/meta-data/iam/security-credentials/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, cfg.RoleName)
	})
	router.HandleFunc("/latest/meta-data/iam/security-credentials/"+cfg.RoleName, credsHandler(cfg))

	return withLogging(router)
}

// StartMetadataServer serves instance-metadata routes from static options,
// so dynamic mode can be exercised outside a cloud environment.
func StartMetadataServer(cfg Config) error {
	cfg = cfg.withDefaults()

	l, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	log.Printf("Instance metadata stub listening on %s (role %s, ttl %s)", l.Addr(), cfg.RoleName, cfg.TTL)
	return http.Serve(l, NewHandler(cfg))
}

func credsHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		err := json.NewEncoder(w).Encode(map[string]interface{}{
			"Code":            "Success",
			"LastUpdated":     iso8601.Format(now),
			"Type":            "AWS-HMAC",
			"AccessKeyId":     cfg.Options.AccessKey,
			"SecretAccessKey": cfg.Options.SecretKey,
			"Token":           cfg.Options.SessionToken,
			"Expiration":      iso8601.Format(now.Add(cfg.TTL)),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
