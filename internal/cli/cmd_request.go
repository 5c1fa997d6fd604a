package cli

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/dandori/dandori/internal/ops"
)

func cmdRequest(sess *ops.Session, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("request", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	to := flagSet.String("to", "", "Who the task is handed to")
	due := flagSet.String("due", "", "Due timestamp acting as the deadline")
	note := flagSet.String("note", "", "Note attached to the request")
	by := flagSet.String("by", "", "Requester (defaults to the configured user)")

	if err := flagSet.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	if flagSet.NArg() != 1 {
		fprintln(errOut, "usage: dd request <id> [options]")

		return 1
	}

	id, ok := resolveArg(sess, errOut, flagSet.Arg(0))
	if !ok {
		return 1
	}

	dueDate, err := parseStamp(*due)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	t, err := sess.SetRequested(id, ops.RequestParams{
		To:   *to,
		Due:  dueDate,
		Note: *note,
		By:   *by,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "requested %s -> %s\n", t.ID, t.AssignedTo)

	return 0
}
