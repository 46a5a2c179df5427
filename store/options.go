package store

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Flag is a boolean environment value. It is true only for the literal
// strings "true" or "1" (case-insensitive); anything else, including
// values strconv would accept, resolves to false.
type Flag bool

// Options describes an object-storage connection. A manager takes its
// options once at construction and never reads the environment again.
type Options struct {
	Endpoint     string `env:"MINIO_HOST" envDefault:"minio-service.kubeflow"`
	Port         int    `env:"MINIO_PORT" envDefault:"9000"`
	UseSSL       Flag   `env:"MINIO_SSL" envDefault:"false"`
	Region       string `env:"MINIO_REGION"`
	AccessKey    string `env:"MINIO_ACCESS_KEY" envDefault:"minio"`
	SecretKey    string `env:"MINIO_SECRET_KEY" envDefault:"minio123"`
	SessionToken string `env:"MINIO_SESSION_TOKEN"`
	MetadataBase string `env:"MINIO_METADATA_BASE" envDefault:"http://169.254.169.254/latest/meta-data"`
}

// LoadOptionsFromEnv resolves connection options from the environment,
// defaulting to the in-cluster MinIO service. Ambiguous boolean values
// resolve to false rather than failing.
func LoadOptionsFromEnv() (Options, error) {
	var opts Options
	err := env.ParseWithOptions(&opts, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(Flag(false)): parseFlag,
		},
	})
	if err != nil {
		return Options{}, fmt.Errorf("resolving options from environment: %w", err)
	}
	return opts, nil
}

func parseFlag(v string) (interface{}, error) {
	switch strings.ToLower(v) {
	case "true", "1":
		return Flag(true), nil
	}
	return Flag(false), nil
}

// Address returns the endpoint in the host:port form minio.New expects.
// A zero port means the scheme default and is omitted.
func (o Options) Address() string {
	if o.Port == 0 {
		return o.Endpoint
	}
	return fmt.Sprintf("%s:%d", o.Endpoint, o.Port)
}
