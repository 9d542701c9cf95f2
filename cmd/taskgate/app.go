package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/abatilo/taskgate/internal/config"
	"github.com/abatilo/taskgate/internal/deps"
	taskerrors "github.com/abatilo/taskgate/internal/errors"
	"github.com/abatilo/taskgate/internal/event"
	"github.com/abatilo/taskgate/internal/logging"
	"github.com/abatilo/taskgate/internal/output"
	"github.com/abatilo/taskgate/internal/plan"
	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/task"
)

// app holds the single registry instance and everything wired around it.
// It is built once per process and handed to every command.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	bus       *event.Bus
	registry  *registry.Registry
	factory   *task.Factory
	formatter output.Formatter
	out       io.Writer
}

// options are the process-level flags.
type options struct {
	configPath string
	planPath   string
	jsonOutput bool
}

func newApp(opts options, out io.Writer) (*app, error) {
	if err := config.Init(opts.configPath); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if opts.jsonOutput {
		viper.Set("output.format", "json")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return newAppWithConfig(cfg, opts.planPath, out)
}

func newAppWithConfig(cfg *config.Config, planPath string, out io.Writer) (*app, error) {
	logger, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	factory, err := task.NewFactory(task.IDScheme(cfg.IDs.Scheme))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	bus := event.NewBus(logger.Slog())
	a := &app{
		cfg:       cfg,
		logger:    logger,
		bus:       bus,
		registry:  registry.New(registry.WithPublisher(bus)),
		factory:   factory,
		formatter: newFormatter(cfg.Output.Format),
		out:       out,
	}

	bus.SubscribeAll(func(e event.Event) {
		a.logger.Debug("registry mutated", "event_type", e.EventType(), "task_id", e.TaskID())
	})

	if planPath != "" {
		p, err := plan.Load(planPath)
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		tasks := p.Apply(a.registry, a.factory)
		a.logger.Info("plan loaded", "path", planPath, "tasks", len(tasks))
	}

	return a, nil
}

func newFormatter(format string) output.Formatter {
	if format == "json" {
		return output.NewJSONFormatter()
	}
	return output.NewHumanFormatter()
}

func (a *app) close() {
	if err := a.logger.Close(); err != nil {
		fmt.Fprint(a.out, a.formatter.FormatError(err))
	}
}

func (a *app) print(s string) {
	_, _ = io.WriteString(a.out, s)
}

// detail resolves the gating state of t. A dangling blocker is reported in
// GateError rather than failing the caller.
func (a *app) detail(t task.Task) (output.Detail, error) {
	d := output.Detail{
		Task:        t,
		BlockingIDs: a.registry.BlockingTaskIDs(t.ID),
	}
	can, err := a.registry.CanCompleteTask(t.ID)
	var notFound taskerrors.TaskNotFoundError
	switch {
	case errors.As(err, &notFound):
		d.GateError = err
	case err != nil:
		return output.Detail{}, err
	default:
		d.CanComplete = can
	}
	return d, nil
}

func (a *app) details(tasks []task.Task) ([]output.Detail, error) {
	out := make([]output.Detail, 0, len(tasks))
	for _, t := range tasks {
		d, err := a.detail(t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (a *app) printTask(id string) error {
	t, err := a.registry.Task(id)
	if err != nil {
		return err
	}
	d, err := a.detail(t)
	if err != nil {
		return err
	}
	a.print(a.formatter.FormatTask(d))
	return nil
}

func (a *app) printTaskList(tasks []task.Task) error {
	ds, err := a.details(tasks)
	if err != nil {
		return err
	}
	a.print(a.formatter.FormatTaskList(ds))
	return nil
}

func (a *app) graph() *deps.Graph {
	return deps.NewGraph(a.registry.Snapshot())
}

func (a *app) report() output.Report {
	g := a.graph()
	r := output.Report{
		Tasks: a.registry.Len(),
		Ready: g.Ready(),
	}
	if _, err := g.Order(); err != nil {
		var cycle deps.CycleError
		if errors.As(err, &cycle) {
			r.Cycle = cycle.IDs
		}
	}
	for _, ref := range g.Dangling() {
		r.Dangling = append(r.Dangling, output.Reference{TaskID: ref.TaskID, BlockerID: ref.BlockerID})
	}
	return r
}
