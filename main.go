package main

import (
	"log"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/minio-vault/minio-vault/cli"
)

// Version is provided at compile time
var Version = "dev"

func main() {
	app := kingpin.New("minio-vault", "Keeps object-storage clients usable by refreshing instance-profile credentials before they expire.")
	app.Version(Version)

	log.SetFlags(0)

	mv := cli.ConfigureGlobals(app)
	cli.ConfigureCredsCommand(app, mv)
	cli.ConfigureLsCommand(app, mv)
	cli.ConfigureServerCommand(app, mv)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
