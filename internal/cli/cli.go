// Package cli implements the headless subcommands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/service"
	"github.com/nissyi-gh/taskflow/internal/state"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Env carries what the subcommands need.
type Env struct {
	Service *service.Service
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	// CategoryColor is used by "cat add" without -color.
	CategoryColor string
}

type runner struct {
	Env
	out    styles
	errOut styles
}

// Run dispatches a subcommand and returns its exit code.
func Run(args []string, env Env) int {
	r := &runner{Env: env, out: newStyles(env.Stdout), errOut: newStyles(env.Stderr)}
	if len(args) == 0 {
		printHelp(env.Stderr)
		return ExitUsage
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		printHelp(env.Stdout)
		return ExitOK
	case "add":
		return r.add(a)
	case "ls":
		return r.list(a)
	case "done":
		return r.toggle(a)
	case "rm":
		return r.remove(a)
	case "dup":
		return r.duplicate(a)
	case "sub":
		return r.subtask(a)
	case "alldone":
		return r.markAllDone(a)
	case "clear":
		return r.clearCompleted(a)
	case "cat":
		return r.category(a)
	case "export":
		return r.export(a)
	case "import":
		return r.importFile(a)
	case "stats":
		return r.stats(a)
	case "theme":
		return r.theme(a)
	}

	r.fail("unknown command: " + cmd)
	fmt.Fprintln(env.Stderr)
	printHelp(env.Stderr)
	return ExitUsage
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `taskflow - tasks, categories and due dates

Usage:
  taskflow [global flags] [command [args]]

Without a command the terminal UI starts.

Commands:
  add <title...> [-p priority] [-due YYYY-MM-DD] [-at HH:MM] [-c category] [-d description] [-s subtask]...
  ls [-view all|today|upcoming|completed|overdue] [-c category] [-sort created|dueDate|priority|alphabetical] [-q search]
  done <id>            Toggle completion
  rm <id>              Delete a task
  dup <id>             Duplicate a task
  sub <id> <n>         Toggle subtask n (1-based)
  alldone              Complete every pending task
  clear                Delete every completed task
  cat add <name> [-color #rrggbb]
  cat rm <id|name>
  cat ls
  export [-format json|yaml] [-o file|-]
  import <file|->      Import tasks from a YAML outline
  stats                Show counters and the last save time
  theme [dark|light]   Show or set the UI theme

Ids may be abbreviated to any unique prefix.
`)
}

func (r *runner) fail(msg string) {
	fmt.Fprintln(r.Stderr, r.errOut.fail.Render("✗ "+msg))
}

func (r *runner) ok(msg string) {
	fmt.Fprintln(r.Stdout, r.out.ok.Render("✓ ")+msg)
}

// failErr prints err and maps it to an exit code.
func (r *runner) failErr(prefix string, err error) int {
	r.fail(prefix + ": " + err.Error())
	if service.IsValidation(err) {
		return ExitUsage
	}
	return ExitError
}

// saved reports a write failure after a mutation.
func (r *runner) saved() int {
	if err := r.Service.Err(); err != nil {
		r.fail("change was not saved: " + err.Error())
		return ExitError
	}
	return ExitOK
}

func (r *runner) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.Stderr)
	return fs
}

// parseArgs parses flags appearing anywhere among args and returns the
// positional arguments in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func usageCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	return ExitUsage
}

func (r *runner) resolveTask(prefix string) (string, int) {
	id, err := r.Service.ResolveTaskID(prefix)
	if err != nil {
		r.fail(err.Error())
		return "", ExitError
	}
	return id, ExitOK
}

// resolveCategory matches an exact id, a name ignoring case, or a unique id
// prefix, in that order.
func resolveCategory(snap state.State, s string) (model.Category, error) {
	s = strings.TrimSpace(s)
	if i := snap.CategoryIndex(s); i >= 0 {
		return snap.Categories[i], nil
	}
	if c, ok := model.FindCategoryByName(snap.Categories, s); ok {
		return c, nil
	}
	var match *model.Category
	for i, c := range snap.Categories {
		if s != "" && strings.HasPrefix(c.ID, s) {
			if match != nil {
				return model.Category{}, fmt.Errorf("several categories match %q", s)
			}
			match = &snap.Categories[i]
		}
	}
	if match == nil {
		return model.Category{}, fmt.Errorf("no category matches %q", s)
	}
	return *match, nil
}

type styles struct {
	r       *lipgloss.Renderer
	ok      lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
	overdue lipgloss.Style
	today   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		r:       r,
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		title:   r.NewStyle().Bold(true),
		overdue: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		today:   r.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func (s styles) color(hex string) lipgloss.Style {
	return s.r.NewStyle().Foreground(lipgloss.Color(hex))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
