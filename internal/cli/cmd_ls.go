package cli

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/dandori/dandori/internal/ops"
	"github.com/dandori/dandori/internal/task"
)

func cmdLs(sess *ops.Session, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	status := flagSet.String("status", "", "Filter by status")
	archived := flagSet.String("archived", "false", "Archive filter: true|false|all")
	requested := flagSet.Bool("requested", false, "Only requested tasks")
	query := flagSet.StringP("query", "q", "", "Filter by title/description substring")
	topo := flagSet.Bool("topo", false, "Topological order instead of priority order")
	component := flagSet.String("component", "", "Only tasks connected to this task")
	details := flagSet.Bool("details", false, "Full records instead of one-liners")

	if err := flagSet.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	filter := ops.ListFilter{
		Status:        task.Status(*status),
		RequestedOnly: *requested,
		Query:         *query,
		Topo:          *topo,
	}

	switch *archived {
	case "true", "1", "yes":
		yes := true
		filter.Archived = &yes
	case "false", "0", "no":
		no := false
		filter.Archived = &no
	case "all":
		// Keep both.
	default:
		fprintf(errOut, "error: invalid --archived value %q\n", *archived)

		return 1
	}

	var tasks []*task.Task

	if *component != "" {
		id, ok := resolveArg(sess, errOut, *component)
		if !ok {
			return 1
		}

		comp, err := sess.Component(id)
		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}

		tasks = comp
	} else {
		tasks = sess.List(filter)
	}

	for _, t := range tasks {
		if *details {
			printTask(out, t)
			fprintln(out, "----------------------------------------------------------------------------")

			continue
		}

		fprintln(out, listLine(t))
	}

	return 0
}
