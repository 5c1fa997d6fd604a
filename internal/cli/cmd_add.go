package cli

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/dandori/dandori/internal/ops"
)

func cmdAdd(sess *ops.Session, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("add", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	description := flagSet.StringP("description", "d", "", "Description text")
	priority := flagSet.IntP("priority", "p", 0, "Priority (higher sorts first)")
	start := flagSet.String("start", "", "Start timestamp")
	due := flagSet.String("due", "", "Due timestamp")
	tags := flagSet.StringSlice("tag", nil, "Tag (repeatable)")
	parents := flagSet.StringSlice("parent", nil, "Parent task ID (repeatable)")
	overwriteID := flagSet.String("id", "", "Use this ID instead of generating one")

	if err := flagSet.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	if flagSet.NArg() != 1 {
		fprintln(errOut, "usage: dd add <title> [options]")

		return 1
	}

	params := ops.AddParams{
		Title:       flagSet.Arg(0),
		Description: *description,
		Tags:        *tags,
		OverwriteID: *overwriteID,
	}

	if flagSet.Changed("priority") {
		params.Priority = priority
	}

	startAt, err := parseStamp(*start)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	params.StartAt = startAt

	dueDate, err := parseStamp(*due)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	params.DueDate = dueDate

	for _, input := range *parents {
		id, ok := resolveArg(sess, errOut, input)
		if !ok {
			return 1
		}

		params.ParentIDs = append(params.ParentIDs, id)
	}

	t, err := sess.Add(params)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, t.ID)

	return 0
}
