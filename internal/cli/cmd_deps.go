package cli

import (
	"io"

	"github.com/dandori/dandori/internal/ops"
)

func cmdDeps(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 1 {
		fprintln(errOut, "usage: dd deps <id>")

		return 1
	}

	id, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return 1
	}

	deps, err := sess.Deps(id)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(deps) == 0 {
		fprintln(out, "no dependencies")

		return 0
	}

	for _, t := range deps {
		fprintln(out, listLine(t))
	}

	return 0
}

func cmdReason(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 1 {
		fprintln(errOut, "usage: dd reason <id>")

		return 1
	}

	id, ok := resolveArg(sess, errOut, args[0])
	if !ok {
		return 1
	}

	reason, err := sess.Reason(id)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, "task:", reason.Task)

	fprintln(out, "depends on:")
	for _, title := range reason.DependsOn {
		fprintln(out, "  -", title)
	}

	fprintln(out, "blocks:")
	for _, title := range reason.Children {
		fprintln(out, "  -", title)
	}

	return 0
}
