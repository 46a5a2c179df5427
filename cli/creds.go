package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/minio-vault/minio-vault/iso8601"
	"github.com/minio-vault/minio-vault/store"
)

func ConfigureCredsCommand(app *kingpin.Application, mv *MinioVault) {
	cmd := app.Command("creds", "Resolve and show the active storage credentials")

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := CredsCommand(mv, os.Stdout)
		app.FatalIfError(err, "creds")
		return nil
	})
}

// CredsCommand acquires a client and prints where it points and which
// credential set backs it, with the key masked.
func CredsCommand(mv *MinioVault, w io.Writer) error {
	mgr, err := mv.Manager()
	if err != nil {
		return err
	}

	client, err := mgr.AcquireClient(context.Background())
	if err != nil {
		return err
	}

	expires := "never"
	if t := mgr.Expires(); !t.IsZero() {
		expires = iso8601.Format(t)
	}

	fmt.Fprintf(w, "Endpoint: %s\n", client.EndpointURL())
	fmt.Fprintf(w, "Mode: %s\n", mgr.Mode())
	fmt.Fprintf(w, "Access key: %s\n", store.FormatKeyForDisplay(mgr.AccessKey()))
	fmt.Fprintf(w, "Expires: %s\n", expires)
	return nil
}
