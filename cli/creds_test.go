package cli

import (
	"github.com/alecthomas/kingpin"
	"github.com/minio-vault/minio-vault/store"
)

func ExampleCredsCommand() {
	app := kingpin.New("minio-vault", "")
	mv := ConfigureGlobals(app)
	mv.options = &store.Options{
		Endpoint:  "minio-service.kubeflow",
		Port:      9000,
		AccessKey: "minio",
		SecretKey: "minio123",
	}
	ConfigureCredsCommand(app, mv)
	kingpin.MustParse(app.Parse([]string{
		"creds",
	}))

	// Output:
	// Endpoint: http://minio-service.kubeflow:9000
	// Mode: persistent
	// Access key: ****************inio
	// Expires: never
}
