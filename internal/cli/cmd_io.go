package cli

import (
	"io"
	"strings"

	"github.com/dandori/dandori/internal/ops"
)

func cmdExport(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 1 {
		fprintln(errOut, "usage: dd export <file>")

		return 1
	}

	if err := sess.ExportJSON(args[0]); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintln(out, "exported to", args[0])

	return 0
}

func cmdImport(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 1 {
		fprintln(errOut, "usage: dd import <file>")

		return 1
	}

	report, err := sess.ImportJSON(args[0])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	fprintf(out, "imported %d task(s), skipped %d existing\n", len(report.Imported), len(report.Skipped))

	for _, id := range report.Skipped {
		fprintln(out, "  skipped", id)
	}

	// Imported graphs bypass the store's mutation guards; audit right away.
	if audit := sess.Check(); !audit.Clean() {
		fprintf(errOut, "warning: imported graph has %d cycle(s) and %d inconsistency(ies); run 'dd check'\n",
			len(audit.Cycles), len(audit.Inconsistencies))
	}

	return 0
}

func cmdCheck(sess *ops.Session, out, errOut io.Writer, args []string) int {
	if len(args) != 0 {
		fprintln(errOut, "usage: dd check")

		return 1
	}

	report := sess.Check()

	if report.Clean() {
		fprintln(out, "ok: no cycles, no inconsistencies")

		return 0
	}

	for _, cycle := range report.Cycles {
		shorts := make([]string, len(cycle))
		for i, id := range cycle {
			shorts[i] = shortID(id)
		}

		fprintln(out, "cycle:", strings.Join(shorts, " -> "))
	}

	for _, inc := range report.Inconsistencies {
		fprintf(out, "%s: %s misses %s\n", inc.Kind, shortID(inc.TaskID), shortID(inc.RelatedID))
	}

	return 1
}
