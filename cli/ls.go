package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin"
	"github.com/minio-vault/minio-vault/store"
	"github.com/minio/minio-go/v7"
)

type LsCommandInput struct {
	Bucket string
	Prefix string
}

func ConfigureLsCommand(app *kingpin.Application, mv *MinioVault) {
	input := LsCommandInput{}

	cmd := app.Command("ls", "List buckets, or the objects in a bucket")

	cmd.Arg("bucket", "Name of the bucket to list").
		StringVar(&input.Bucket)

	cmd.Flag("prefix", "Only list objects under this key prefix").
		StringVar(&input.Prefix)

	cmd.Action(func(c *kingpin.ParseContext) error {
		err := LsCommand(input, mv, os.Stdout)
		app.FatalIfError(err, "ls")
		return nil
	})
}

// LsCommand lists through the forwarder, so every invocation re-resolves
// the client and picks up fresh credentials if the cached ones expired.
func LsCommand(input LsCommandInput, mv *MinioVault, w io.Writer) error {
	mgr, err := mv.Manager()
	if err != nil {
		return err
	}
	fwd := store.NewForwarder(mgr)
	ctx := context.Background()

	if input.Bucket == "" {
		buckets, err := fwd.ListBuckets(ctx)
		if err != nil {
			return err
		}
		for _, b := range buckets {
			fmt.Fprintln(w, b.Name)
		}
		return nil
	}

	for obj := range fwd.ListObjects(ctx, input.Bucket, minio.ListObjectsOptions{Prefix: input.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		fmt.Fprintln(w, obj.Key)
	}
	return nil
}
