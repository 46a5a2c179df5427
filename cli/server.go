package cli

import (
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/minio-vault/minio-vault/server"
)

type ServerCommandInput struct {
	Addr     string
	RoleName string
	TTL      time.Duration
}

func ConfigureServerCommand(app *kingpin.Application, mv *MinioVault) {
	input := ServerCommandInput{}

	cmd := app.Command("server", "Run a local instance-metadata stub that issues the configured static credentials")

	cmd.Flag("addr", "Address to listen on").
		Default(server.DefaultAddr).
		StringVar(&input.Addr)

	cmd.Flag("role", "Role name to advertise").
		Default("local-role").
		StringVar(&input.RoleName)

	cmd.Flag("ttl", "Lifetime of each issued credential set").
		Default("15m").
		DurationVar(&input.TTL)

	cmd.Action(func(c *kingpin.ParseContext) error {
		opts, err := mv.Options()
		if err != nil {
			return err
		}
		err = server.StartMetadataServer(server.Config{
			Addr:     input.Addr,
			RoleName: input.RoleName,
			TTL:      input.TTL,
			Options:  opts,
		})
		app.FatalIfError(err, "server")
		return nil
	})
}
