package cli

import (
	"io"

	"github.com/dandori/dandori/internal/ops"
)

func cmdShow(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 1 {
		fprintln(errOut, "usage: dd show <id>")

		return 1
	}

	id, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return 1
	}

	t, err := sess.Get(id)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	printTask(out, t)

	return 0
}

func cmdRm(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 1 {
		fprintln(errOut, "usage: dd rm <id>")

		return 1
	}

	id, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return 1
	}

	if err := sess.Remove(id); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, "removed", id)

	return 0
}
