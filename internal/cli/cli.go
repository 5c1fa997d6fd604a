// Package cli wires the dd command surface to the ops layer. Every command
// runs against one session: open, mutate, commit-and-save, exit.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dandori/dandori/internal/config"
	"github.com/dandori/dandori/internal/ops"
	"github.com/dandori/dandori/internal/task"
)

const usage = `dd - dependency-aware task tracking

Usage:
  dd <command> [arguments]

Commands:
  add <title> [options]            Create a task
  ls [options]                     List tasks
  show <id>                        Show one task in full
  update <id> [options]            Change fields and edges
  done <id>                        Mark a task done
  start <id>                       Mark a task in progress
  insert <parent> <child> <title>  Splice a new task between two tasks
  rm <id>                          Delete a task and its edges
  link <parent> <child>            Add a dependency edge
  unlink <parent> <child>          Remove a dependency edge
  archive <id>                     Archive the connected component
  restore <id>                     Restore the connected component
  deps <id>                        List what a task depends on
  reason <id>                      Explain a task's place in the graph
  request <id> [options]           Hand a task to someone else
  export <file>                    Write all tasks to a JSON file
  import <file>                    Merge tasks from a JSON file
  check                            Audit the graph for cycles and broken edges
  serve [--addr host:port]         Run the read-only HTTP API

Run 'dd <command> --help' for command options.
`

// Run executes one dd invocation and returns the process exit code.
func Run(args []string, env map[string]string, out, errOut io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		fprintf(out, "%s\n", usage)

		return 0
	}

	cfg, err := config.Load(env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	sess, err := ops.Open(cfg)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	command, rest := args[0], args[1:]

	switch command {
	case "add":
		return cmdAdd(sess, out, errOut, rest)
	case "ls", "list":
		return cmdLs(sess, out, errOut, rest)
	case "show":
		return cmdShow(sess, out, errOut, rest)
	case "update":
		return cmdUpdate(sess, out, errOut, rest)
	case "done":
		return cmdSetStatus(sess, out, errOut, rest, task.StatusDone)
	case "start":
		return cmdSetStatus(sess, out, errOut, rest, task.StatusInProgress)
	case "insert":
		return cmdInsert(sess, out, errOut, rest)
	case "rm":
		return cmdRm(sess, out, errOut, rest)
	case "link":
		return cmdLink(sess, out, errOut, rest)
	case "unlink":
		return cmdUnlink(sess, out, errOut, rest)
	case "archive":
		return cmdArchive(sess, out, errOut, rest, true)
	case "restore":
		return cmdArchive(sess, out, errOut, rest, false)
	case "deps":
		return cmdDeps(sess, out, errOut, rest)
	case "reason":
		return cmdReason(sess, out, errOut, rest)
	case "request":
		return cmdRequest(sess, out, errOut, rest)
	case "export":
		return cmdExport(sess, out, errOut, rest)
	case "import":
		return cmdImport(sess, out, errOut, rest)
	case "check":
		return cmdCheck(sess, out, errOut, rest)
	case "serve":
		return cmdServe(sess, out, errOut, rest)
	default:
		fprintf(errOut, "unknown command: %s\n\n%s", command, usage)

		return 1
	}
}

// resolveArg maps a full or shortened task ID to a known ID, printing the
// failure for the user when it cannot.
func resolveArg(sess *ops.Session, errOut io.Writer, input string) (string, bool) {
	id, err := sess.ResolveID(input)
	if err != nil {
		fprintln(errOut, "error:", err)

		return "", false
	}

	return id, true
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}

	return id[:8]
}

// listLine renders the one-line ls format:
//
//	[A,R] 1a2b3c4d | p=2 | requested -> bob | Title
func listLine(t *task.Task) string {
	var marks []string

	if t.IsArchived {
		marks = append(marks, "A")
	}

	switch t.Status {
	case task.StatusDone:
		marks = append(marks, "D")
	case task.StatusInProgress:
		marks = append(marks, "P")
	case task.StatusRequested:
		marks = append(marks, "R")
	case task.StatusRemoved:
		marks = append(marks, "X")
	case task.StatusPending:
	}

	mark := " "
	if len(marks) > 0 {
		mark = strings.Join(marks, ",")
	}

	line := fmt.Sprintf("[%s] %s | p=%s", mark, shortID(t.ID), priorityString(t.Priority))

	if t.Status == task.StatusRequested && t.AssignedTo != "" {
		line += " | requested -> " + t.AssignedTo
	}

	return line + " | " + t.Title
}

func priorityString(p *int) string {
	if p == nil {
		return "-"
	}

	return fmt.Sprintf("%d", *p)
}

func printTask(out io.Writer, t *task.Task) {
	fprintln(out, "id:         ", t.ID)
	fprintln(out, "title:      ", t.Title)
	fprintln(out, "status:     ", t.Status)
	fprintln(out, "owner:      ", t.Owner)
	fprintln(out, "priority:   ", priorityString(t.Priority))
	fprintln(out, "archived:   ", t.IsArchived)

	if t.Description != "" {
		fprintln(out, "description:", t.Description)
	}

	if len(t.Tags) > 0 {
		fprintln(out, "tags:       ", strings.Join(t.Tags, ", "))
	}

	fprintln(out, "created_at: ", t.CreatedAt.Format(task.Stamp))
	fprintln(out, "updated_at: ", t.UpdatedAt.Format(task.Stamp))
	printOptTime(out, "start_at:   ", t.StartAt)
	printOptTime(out, "due_date:   ", t.DueDate)
	printOptTime(out, "done_at:    ", t.DoneAt)

	if t.Status == task.StatusRequested {
		fprintln(out, "assigned_to:", t.AssignedTo)
		fprintln(out, "requested_by:", t.RequestedBy)
		printOptTime(out, "requested_at:", t.RequestedAt)

		if t.RequestedNote != "" {
			fprintln(out, "note:       ", t.RequestedNote)
		}
	}

	if len(t.DependsOn) > 0 {
		fprintln(out, "depends_on: ", strings.Join(t.DependsOn, ", "))
	}

	if len(t.Children) > 0 {
		fprintln(out, "children:   ", strings.Join(t.Children, ", "))
	}
}

func printOptTime(out io.Writer, label string, at *time.Time) {
	if at == nil {
		return
	}

	fprintln(out, label, at.Format(task.Stamp))
}

// parseStamp accepts the canonical stamp or a bare date.
func parseStamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	for _, layout := range []string{task.Stamp, "2006-01-02"} {
		if at, err := time.Parse(layout, s); err == nil {
			return &at, nil
		}
	}

	return nil, fmt.Errorf("invalid timestamp %q (want %s or 2006-01-02)", s, task.Stamp)
}

func fprintf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
