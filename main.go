package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/nissyi-gh/taskflow/internal/cli"
	"github.com/nissyi-gh/taskflow/internal/config"
	"github.com/nissyi-gh/taskflow/internal/logging"
	"github.com/nissyi-gh/taskflow/internal/service"
	"github.com/nissyi-gh/taskflow/internal/state"
	"github.com/nissyi-gh/taskflow/internal/store"
	"github.com/nissyi-gh/taskflow/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("taskflow", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: taskflow [flags] [command [args]]")
		fmt.Fprintln(fs.Output(), "Without a command the terminal UI starts. Run \"taskflow help\" for commands.")
		fs.PrintDefaults()
	}
	cfg, err := config.Load(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return cli.ExitOK
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return cli.ExitUsage
	}

	logger, closer, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		return cli.ExitError
	}
	defer closer.Close()

	var storage state.Storage
	if cfg.Memory {
		storage = store.NewMemory()
	} else {
		kv, err := store.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			return cli.ExitError
		}
		defer kv.Close()
		storage = kv
	}

	container := state.NewContainer(storage, logger)
	svc := service.New(container,
		service.WithLogger(logger),
		service.WithLocale(cfg.Language()),
	)
	unsubscribe := svc.Subscribe(func(s state.State) {
		logger.Debug("state changed", "tasks", len(s.Tasks), "categories", len(s.Categories))
	})
	defer unsubscribe()

	if rest := fs.Args(); len(rest) > 0 {
		return cli.Run(rest, cli.Env{
			Service:       svc,
			Stdin:         os.Stdin,
			Stdout:        os.Stdout,
			Stderr:        os.Stderr,
			CategoryColor: cfg.CategoryColor,
		})
	}

	m := ui.NewModel(svc, ui.Options{Logger: logger, CategoryColor: cfg.CategoryColor})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

func openLogger(cfg *config.Config) (*log.Logger, io.Closer, error) {
	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	path := cfg.LogFile
	if path == "" {
		path = config.DefaultLogFile()
	}
	return logging.Open(path, opts)
}
