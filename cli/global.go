package cli

import (
	"io"
	"log"

	"github.com/alecthomas/kingpin"
	"github.com/minio-vault/minio-vault/store"
)

// MinioVault is the shared state for CLI commands. Options and the manager
// are resolved lazily so each command only pays for what it uses.
type MinioVault struct {
	Debug bool

	options *store.Options
	manager *store.Manager
}

// Options resolves connection options from the environment once and caches
// them for the process.
func (m *MinioVault) Options() (store.Options, error) {
	if m.options == nil {
		opts, err := store.LoadOptionsFromEnv()
		if err != nil {
			return store.Options{}, err
		}
		m.options = &opts
	}
	return *m.options, nil
}

// Manager returns the shared credential lifecycle manager, building it on
// first use.
func (m *MinioVault) Manager() (*store.Manager, error) {
	if m.manager == nil {
		opts, err := m.Options()
		if err != nil {
			return nil, err
		}
		mgr, err := store.NewManager(opts)
		if err != nil {
			return nil, err
		}
		m.manager = mgr
	}
	return m.manager, nil
}

// ConfigureGlobals sets up the global flags and returns the shared state.
func ConfigureGlobals(app *kingpin.Application) *MinioVault {
	mv := &MinioVault{}

	app.Flag("debug", "Show debugging output").
		BoolVar(&mv.Debug)

	app.PreAction(func(c *kingpin.ParseContext) error {
		if !mv.Debug {
			log.SetOutput(io.Discard)
		}
		return nil
	})

	return mv
}
