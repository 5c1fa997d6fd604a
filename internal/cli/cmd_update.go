package cli

import (
	"io"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/dandori/dandori/internal/ops"
)

// cmdUpdate merges the flags over the task's current state and hands the
// full desired state to ops.Update, which reconciles the edge sets.
func cmdUpdate(sess *ops.Session, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("update", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	title := flagSet.String("title", "", "New title")
	description := flagSet.String("description", "", "New description")
	priority := flagSet.IntP("priority", "p", 0, "New priority")
	clearPriority := flagSet.Bool("clear-priority", false, "Unset the priority")
	start := flagSet.String("start", "", "New start timestamp")
	due := flagSet.String("due", "", "New due timestamp")
	tags := flagSet.StringSlice("tag", nil, "Replace tags (repeatable)")
	addParents := flagSet.StringSlice("add-parent", nil, "Link a parent (repeatable)")
	removeParents := flagSet.StringSlice("remove-parent", nil, "Unlink a parent (repeatable)")
	addChildren := flagSet.StringSlice("add-child", nil, "Link a child (repeatable)")
	removeChildren := flagSet.StringSlice("remove-child", nil, "Unlink a child (repeatable)")

	if err := flagSet.Parse(args); err != nil {
		fprintf(errOut, "error: %v\n", err)

		return 1
	}

	if flagSet.NArg() != 1 {
		fprintln(errOut, "usage: dd update <id> [options]")

		return 1
	}

	id, ok := resolveArg(sess, errOut, flagSet.Arg(0))
	if !ok {
		return 1
	}

	current, err := sess.Get(id)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	// Start from the current state and fold the flags in.
	params := ops.UpdateParams{
		Description: current.Description,
		Priority:    current.Priority,
		StartAt:     current.StartAt,
		DueDate:     current.DueDate,
		Tags:        current.Tags,
		ParentIDs:   slices.Clone(current.DependsOn),
		ChildIDs:    slices.Clone(current.Children),
	}

	if flagSet.Changed("title") {
		params.Title = title
	}

	if flagSet.Changed("description") {
		params.Description = *description
	}

	switch {
	case *clearPriority:
		params.Priority = nil
	case flagSet.Changed("priority"):
		params.Priority = priority
	}

	if flagSet.Changed("start") {
		at, err := parseStamp(*start)
		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}

		params.StartAt = at
	}

	if flagSet.Changed("due") {
		at, err := parseStamp(*due)
		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}

		params.DueDate = at
	}

	if flagSet.Changed("tag") {
		params.Tags = *tags
	}

	params.ParentIDs, ok = editIDSet(sess, errOut, params.ParentIDs, *addParents, *removeParents)
	if !ok {
		return 1
	}

	params.ChildIDs, ok = editIDSet(sess, errOut, params.ChildIDs, *addChildren, *removeChildren)
	if !ok {
		return 1
	}

	t, err := sess.Update(id, params)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	printTask(out, t)

	return 0
}

// editIDSet applies add/remove edits to an edge ID list, resolving
// shortened IDs as it goes.
func editIDSet(sess *ops.Session, errOut io.Writer, current, add, remove []string) ([]string, bool) {
	out := slices.Clone(current)

	for _, input := range add {
		id, ok := resolveArg(sess, errOut, input)
		if !ok {
			return nil, false
		}

		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	for _, input := range remove {
		id, ok := resolveArg(sess, errOut, input)
		if !ok {
			return nil, false
		}

		out = slices.DeleteFunc(out, func(s string) bool { return s == id })
	}

	return out, true
}
