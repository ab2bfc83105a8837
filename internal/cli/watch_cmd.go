package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/muse/internal/app"
	"github.com/alexanderramin/muse/internal/coach"
	"github.com/alexanderramin/muse/internal/host"
	"github.com/alexanderramin/muse/internal/lexicon"
	"github.com/alexanderramin/muse/internal/metrics"
	"github.com/alexanderramin/muse/internal/rules"
	"github.com/alexanderramin/muse/internal/trigger"
)

func newWatchCmd(a *App) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a draft file and coach while you write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(a, args[0], mode)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "initial writing mode")

	return cmd
}

func runWatch(a *App, path, mode string) error {
	logger := a.Logger

	catalog, err := rules.Load(a.RulesDir)
	if err != nil {
		logger.Warn("rule catalog load failed, using defaults", "error", err)
	}

	engine := metrics.NewEngine(lexicon.NewSuffixClassifier())

	var schedOpts []trigger.Option
	if a.Store != nil {
		schedOpts = append(schedOpts, trigger.WithEventSink(a.Store))
	}
	sched := trigger.NewScheduler(catalog.Rules, logger, schedOpts...)

	prompts := coach.NewPromptBuilder(catalog.Methodology)
	sessions := coach.NewManager(coach.DefaultConfig(), prompts, logger)
	watcher := host.NewWatcher(path, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []app.Option{}
	if mode != "" {
		opts = append(opts, app.WithMode(mode))
	}
	if a.Store != nil {
		opts = append(opts, app.WithSampleSink(a.Store))
	}

	if !a.Interactive {
		opts = append(opts, app.WithListener(logListener{logger: logger}))
		runner := app.NewRunner(engine, sched, sessions, prompts, a.Client,
			catalog, watcher.Edits(), logger, opts...)
		startBackground(ctx, a, watcher, runner)
		runner.Run(ctx)
		return nil
	}

	bridge := &programListener{}
	opts = append(opts, app.WithListener(bridge))
	runner := app.NewRunner(engine, sched, sessions, prompts, a.Client,
		catalog, watcher.Edits(), logger, opts...)

	program := tea.NewProgram(newPanelModel(runner, path, catalog.Modes), tea.WithAltScreen())
	bridge.Attach(program)

	go runner.Run(ctx)
	startBackground(ctx, a, watcher, runner)
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err = program.Run()
	return err
}

// startBackground launches the file watcher and, when the rules
// directory exists, the catalog hot-reload watcher.
func startBackground(ctx context.Context, a *App, watcher *host.Watcher, runner *app.Runner) {
	go func() {
		if err := watcher.Start(ctx); err != nil {
			a.Logger.Error("file watcher stopped", "error", err)
		}
	}()

	if stat, err := os.Stat(a.RulesDir); err == nil && stat.IsDir() {
		go func() {
			if err := rules.Watch(ctx, a.RulesDir, a.Logger, runner.SetCatalog); err != nil {
				a.Logger.Warn("rule reload watcher stopped", "error", err)
			}
		}()
	}
}
