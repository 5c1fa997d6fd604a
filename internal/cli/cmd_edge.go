package cli

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/dandori/dandori/internal/ops"
	"github.com/dandori/dandori/internal/task"
)

func cmdSetStatus(sess *ops.Session, out, errOut io.Writer, args []string, status task.Status) int {
	if len(args) != 1 {
		fprintf(errOut, "usage: dd %s <id>\n", statusCommand(status))

		return 1
	}

	id, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return 1
	}

	t, err := sess.SetStatus(id, status)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "%s %s\n", statusCommand(status), t.ID)

	return 0
}

func statusCommand(status task.Status) string {
	if status == task.StatusInProgress {
		return "start"
	}

	return string(status)
}

func cmdLink(sess *ops.Session, out, errOut io.Writer, args []string) int {
	parentID, childID, ok := resolveEdgeArgs(sess, errOut, args, "dd link <parent> <child>")
	if !ok {
		return 1
	}

	if _, err := sess.LinkChildren(parentID, []string{childID}); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "linked %s -> %s\n", parentID, childID)

	return 0
}

func cmdUnlink(sess *ops.Session, out, errOut io.Writer, args []string) int {
	parentID, childID, ok := resolveEdgeArgs(sess, errOut, args, "dd unlink <parent> <child>")
	if !ok {
		return 1
	}

	if err := sess.RemoveChild(parentID, childID); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "unlinked %s -> %s\n", parentID, childID)

	return 0
}

func resolveEdgeArgs(sess *ops.Session, errOut io.Writer, args []string, usage string) (string, string, bool) {
	if len(args) != 2 {
		fprintln(errOut, "usage:", usage)

		return "", "", false
	}

	parentID, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return "", "", false
	}

	childID, ok := resolveArg(sess, errOut, args[1])
	if !ok {
		return "", "", false
	}

	return parentID, childID, true
}

func cmdInsert(sess *ops.Session, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("insert", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	description := flagSet.StringP("description", "d", "", "Description text")
	priority := flagSet.IntP("priority", "p", 0, "Priority")
	tags := flagSet.StringSlice("tag", nil, "Tag (repeatable)")

	if err := flagSet.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	if flagSet.NArg() != 3 {
		fprintln(errOut, "usage: dd insert <parent> <child> <title> [options]")

		return 1
	}

	parentID, ok := resolveArg(sess, errOut, flagSet.Arg(0))
	if !ok {
		return 1
	}

	childID, ok := resolveArg(sess, errOut, flagSet.Arg(1))
	if !ok {
		return 1
	}

	params := ops.InsertParams{
		Title:       flagSet.Arg(2),
		Description: *description,
		Tags:        *tags,
	}

	if flagSet.Changed("priority") {
		params.Priority = priority
	}

	t, err := sess.InsertBetween(parentID, childID, params)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, t.ID)

	return 0
}

func cmdArchive(sess *ops.Session, out, errOut io.Writer, args []string, archive bool) int {
	verb := "archive"
	toggle := sess.ArchiveTree

	if !archive {
		verb = "restore"
		toggle = sess.UnarchiveTree
	}

	if len(args) != 1 {
		fprintf(errOut, "usage: dd %s <id>\n", verb)

		return 1
	}

	id, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return 1
	}

	touched, err := toggle(id)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "%sd %d task(s):\n", verb, len(touched))

	for _, tid := range touched {
		fprintln(out, " ", tid)
	}

	return 0
}
