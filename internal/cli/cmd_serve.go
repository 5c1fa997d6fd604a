package cli

import (
	"io"
	"log/slog"

	flag "github.com/spf13/pflag"

	"github.com/dandori/dandori/internal/api"
	"github.com/dandori/dandori/internal/ops"
)

func cmdServe(sess *ops.Session, _, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("serve", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	addr := flagSet.String("addr", "127.0.0.1:7353", "Listen address")

	if err := flagSet.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	logger := slog.New(slog.NewTextHandler(errOut, nil))

	server := api.New(sess, logger)
	if err := server.ListenAndServe(*addr); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	return 0
}
