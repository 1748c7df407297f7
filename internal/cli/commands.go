package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/nissyi-gh/taskflow/internal/export"
	"github.com/nissyi-gh/taskflow/internal/importer"
	"github.com/nissyi-gh/taskflow/internal/model"
	"github.com/nissyi-gh/taskflow/internal/query"
	"github.com/nissyi-gh/taskflow/internal/service"
	"github.com/nissyi-gh/taskflow/internal/state"
)

type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ", ") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func (r *runner) add(args []string) int {
	fs := r.flagSet("add")
	priority := fs.String("p", "", "priority: urgent, high, medium, low, none")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")
	at := fs.String("at", "", "due time (HH:MM)")
	cat := fs.String("c", "", "category id or name")
	desc := fs.String("d", "", "description")
	var subtasks stringList
	fs.Var(&subtasks, "s", "subtask (repeatable)")
	words, err := parseArgs(fs, args)
	if err != nil {
		return usageCode(err)
	}
	if len(words) == 0 {
		r.fail("usage: taskflow add <title...>")
		return ExitUsage
	}

	in := service.TaskInput{
		Title:       strings.Join(words, " "),
		Description: *desc,
		Priority:    model.Priority(strings.ToLower(*priority)),
		DueDate:     *due,
		DueTime:     *at,
	}
	for _, s := range subtasks {
		in.Subtasks = append(in.Subtasks, model.Subtask{Text: s})
	}
	if *cat != "" {
		c, err := resolveCategory(r.Service.Snapshot(), *cat)
		if err != nil {
			r.fail(err.Error())
			return ExitUsage
		}
		in.CategoryID = c.ID
	}

	task, err := r.Service.CreateTask(in)
	if err != nil {
		return r.failErr("add", err)
	}
	r.ok(fmt.Sprintf("added %s %s", r.out.muted.Render(shortID(task.ID)), task.Title))
	return r.saved()
}

func (r *runner) list(args []string) int {
	fs := r.flagSet("ls")
	view := fs.String("view", "", "view: all, today, upcoming, completed, overdue, category")
	cat := fs.String("c", "", "category id or name")
	sortKey := fs.String("sort", "", "sort: created, dueDate, priority, alphabetical")
	search := fs.String("q", "", "search title and description")
	if _, err := parseArgs(fs, args); err != nil {
		return usageCode(err)
	}

	snap := r.Service.Snapshot()
	p := snap.Params(*search)
	if *view != "" {
		p.View = query.View(*view)
		p.CategoryID = ""
		if !p.View.Valid() {
			r.fail("unknown view: " + *view)
			return ExitUsage
		}
	}
	if *cat != "" {
		c, err := resolveCategory(snap, *cat)
		if err != nil {
			r.fail(err.Error())
			return ExitUsage
		}
		p.View, p.CategoryID = query.ViewCategory, c.ID
	}
	if p.View == query.ViewCategory && p.CategoryID == "" {
		r.fail("the category view needs -c")
		return ExitUsage
	}
	if *sortKey != "" {
		p.Sort = query.SortKey(*sortKey)
		if !p.Sort.Valid() {
			r.fail("unknown sort: " + *sortKey)
			return ExitUsage
		}
	}

	tasks := r.Service.Query(p)
	heading := string(p.View)
	if p.View == query.ViewCategory {
		if c, ok := model.LookupCategory(snap.Categories, &p.CategoryID); ok {
			heading = c.Name
		}
	}
	fmt.Fprintf(r.Stdout, "%s %s\n", r.out.title.Render(heading),
		r.out.muted.Render(fmt.Sprintf("(%d, by %s)", len(tasks), p.Sort.Label())))
	if len(tasks) == 0 {
		fmt.Fprintln(r.Stdout, r.out.muted.Render("no tasks"))
		return ExitOK
	}
	now := r.Service.Now()
	for _, t := range tasks {
		fmt.Fprintln(r.Stdout, r.taskLine(t, snap.Categories, now))
	}
	return ExitOK
}

func (r *runner) toggle(args []string) int {
	if len(args) != 1 {
		r.fail("usage: taskflow done <id>")
		return ExitUsage
	}
	id, code := r.resolveTask(args[0])
	if code != ExitOK {
		return code
	}
	task, _ := r.Service.ToggleTask(id)
	if task.Completed {
		r.ok("completed " + task.Title)
	} else {
		r.ok("reopened " + task.Title)
	}
	return r.saved()
}

func (r *runner) remove(args []string) int {
	if len(args) != 1 {
		r.fail("usage: taskflow rm <id>")
		return ExitUsage
	}
	id, code := r.resolveTask(args[0])
	if code != ExitOK {
		return code
	}
	task, _ := r.Service.Task(id)
	r.Service.DeleteTask(id)
	r.ok("removed " + task.Title)
	return r.saved()
}

func (r *runner) duplicate(args []string) int {
	if len(args) != 1 {
		r.fail("usage: taskflow dup <id>")
		return ExitUsage
	}
	id, code := r.resolveTask(args[0])
	if code != ExitOK {
		return code
	}
	dup, _ := r.Service.DuplicateTask(id)
	r.ok(fmt.Sprintf("added %s %s", r.out.muted.Render(shortID(dup.ID)), dup.Title))
	return r.saved()
}

func (r *runner) subtask(args []string) int {
	if len(args) != 2 {
		r.fail("usage: taskflow sub <id> <n>")
		return ExitUsage
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		r.fail("sub: not a number: " + args[1])
		return ExitUsage
	}
	id, code := r.resolveTask(args[0])
	if code != ExitOK {
		return code
	}
	task, _ := r.Service.Task(id)
	if n < 1 || n > len(task.Subtasks) {
		r.fail(fmt.Sprintf("subtask out of range: have %d, got %d", len(task.Subtasks), n))
		return ExitUsage
	}

	auto, _ := r.Service.ToggleSubtask(id, n-1)
	r.ok("toggled " + task.Subtasks[n-1].Text)
	if auto {
		r.ok("all subtasks done, completed " + task.Title)
	}
	return r.saved()
}

func (r *runner) markAllDone(args []string) int {
	if len(args) != 0 {
		r.fail("usage: taskflow alldone")
		return ExitUsage
	}
	n, err := r.Service.MarkAllDone()
	if err != nil {
		return r.failErr("alldone", err)
	}
	r.ok(fmt.Sprintf("completed %d tasks", n))
	return r.saved()
}

func (r *runner) clearCompleted(args []string) int {
	if len(args) != 0 {
		r.fail("usage: taskflow clear")
		return ExitUsage
	}
	n := r.Service.ClearCompleted()
	r.ok(fmt.Sprintf("removed %d completed tasks", n))
	return r.saved()
}

func (r *runner) category(args []string) int {
	if len(args) == 0 {
		r.fail("usage: taskflow cat add|rm|ls")
		return ExitUsage
	}
	sub, a := args[0], args[1:]
	switch sub {
	case "add":
		fs := r.flagSet("cat add")
		color := fs.String("color", r.CategoryColor, "color (#rrggbb)")
		words, err := parseArgs(fs, a)
		if err != nil {
			return usageCode(err)
		}
		c, err := r.Service.CreateCategory(strings.Join(words, " "), *color)
		if err != nil {
			return r.failErr("cat add", err)
		}
		r.ok(fmt.Sprintf("added category %s %s", r.out.color(c.Color).Render(c.Name), r.out.muted.Render(c.ID)))
		return r.saved()

	case "rm":
		if len(a) != 1 {
			r.fail("usage: taskflow cat rm <id|name>")
			return ExitUsage
		}
		c, err := resolveCategory(r.Service.Snapshot(), a[0])
		if err != nil {
			r.fail(err.Error())
			return ExitError
		}
		r.Service.DeleteCategory(c.ID)
		r.ok("removed category " + c.Name)
		return r.saved()

	case "ls":
		snap := r.Service.Snapshot()
		sum := r.Service.Summary()
		if len(snap.Categories) == 0 {
			fmt.Fprintln(r.Stdout, r.out.muted.Render("no categories"))
		}
		for _, c := range snap.Categories {
			fmt.Fprintf(r.Stdout, "%s %s %s\n",
				r.out.color(c.Color).Render("● "+c.Name),
				r.out.muted.Render(c.ID),
				r.out.muted.Render(fmt.Sprintf("%d pending", sum.ByCategory[c.ID])))
		}
		return ExitOK
	}

	r.fail("unknown cat command: " + sub)
	return ExitUsage
}

func (r *runner) export(args []string) int {
	fs := r.flagSet("export")
	formatName := fs.String("format", "json", "json or yaml")
	out := fs.String("o", "", `output file ("-" for stdout)`)
	if _, err := parseArgs(fs, args); err != nil {
		return usageCode(err)
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		r.fail(err.Error())
		return ExitUsage
	}

	now := r.Service.Now()
	snap := export.New(r.Service.Snapshot(), now)
	if *out == "-" {
		if err := export.Write(r.Stdout, snap, format); err != nil {
			r.fail(err.Error())
			return ExitError
		}
		return ExitOK
	}
	path := *out
	if path == "" {
		path = export.Filename(now, format)
	}
	if err := export.WriteFile(path, snap, format); err != nil {
		r.fail(err.Error())
		return ExitError
	}
	r.ok(fmt.Sprintf("exported %d tasks to %s", len(snap.Tasks), path))
	return ExitOK
}

func (r *runner) importFile(args []string) int {
	if len(args) != 1 {
		r.fail("usage: taskflow import <file|->")
		return ExitUsage
	}
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(r.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		r.fail("read import: " + err.Error())
		return ExitError
	}

	n, err := importer.Import(r.Service, data)
	if n > 0 {
		r.ok(fmt.Sprintf("imported %d tasks", n))
	}
	if err != nil {
		if errors.Is(err, importer.ErrNoTasks) {
			r.fail(err.Error())
			return ExitUsage
		}
		return r.failErr("import", err)
	}
	return r.saved()
}

func (r *runner) stats(args []string) int {
	if len(args) != 0 {
		r.fail("usage: taskflow stats")
		return ExitUsage
	}
	sum := r.Service.Summary()
	snap := r.Service.Snapshot()

	fmt.Fprintf(r.Stdout, "Total %d  Done %d  Pending %d  Overdue %d  %d%%\n",
		sum.Total, sum.Completed, sum.Pending, sum.Overdue, sum.Percent)
	bar := progress.New(progress.WithSolidFill("#e63946"), progress.WithoutPercentage(), progress.WithWidth(30))
	fmt.Fprintln(r.Stdout, bar.ViewAs(float64(sum.Percent)/100))
	fmt.Fprintf(r.Stdout, "Today %d  Upcoming %d\n", sum.Badges[query.ViewToday], sum.Badges[query.ViewUpcoming])
	for _, c := range snap.Categories {
		fmt.Fprintf(r.Stdout, "%s %d\n", r.out.color(c.Color).Render(c.Name), sum.ByCategory[c.ID])
	}

	at, ok, err := r.Service.SavedAt()
	switch {
	case err != nil:
		r.fail("read save time: " + err.Error())
		return ExitError
	case ok:
		fmt.Fprintf(r.Stdout, "Last saved %s\n", at.Local().Format("2006-01-02 15:04"))
	default:
		fmt.Fprintln(r.Stdout, "Not saved yet")
	}
	return ExitOK
}

func (r *runner) theme(args []string) int {
	switch len(args) {
	case 0:
		fmt.Fprintln(r.Stdout, r.Service.Snapshot().Theme)
		return ExitOK
	case 1:
		theme := state.Theme(strings.ToLower(args[0]))
		if !theme.Valid() {
			r.fail(fmt.Sprintf("unknown theme %q (dark or light)", args[0]))
			return ExitUsage
		}
		r.Service.SetTheme(theme)
		r.ok("theme " + string(theme))
		return r.saved()
	}
	r.fail("usage: taskflow theme [dark|light]")
	return ExitUsage
}
