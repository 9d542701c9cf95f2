package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	taskerrors "github.com/abatilo/taskgate/internal/errors"
	"github.com/abatilo/taskgate/internal/plan"
	"github.com/abatilo/taskgate/internal/registry"
	"github.com/abatilo/taskgate/internal/shell"
	"github.com/abatilo/taskgate/internal/task"
)

// appFn returns the process app. Commands are built before the app exists, so
// they resolve it at run time.
type appFn func() *app

// taskCommands returns every command that operates on the registry. They are
// shared by the process root and by each shell line.
func taskCommands(getApp appFn) []*cobra.Command {
	return []*cobra.Command{
		addCmd(getApp),
		blockCmd(getApp),
		unblockCmd(getApp),
		doneCmd(getApp),
		undoCmd(getApp),
		showCmd(getApp),
		listCmd(getApp),
		canCmd(getApp),
		blockersCmd(getApp),
		candidatesCmd(getApp),
		readyCmd(getApp),
		graphCmd(getApp),
		checkCmd(getApp),
		dumpCmd(getApp),
	}
}

// addCmd implements 'taskgate add'.
func addCmd(getApp appFn) *cobra.Command {
	var description string
	var complete bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			t := a.factory.Make(task.Params{
				Name:        args[0],
				Description: task.StringPtr(description),
				Complete:    complete,
			})
			a.registry.RegisterTask(t)
			return a.printTask(t.ID)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().BoolVar(&complete, "complete", false, "Create the task already complete")
	return cmd
}

// blockCmd implements 'taskgate block'.
func blockCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "block <id> <blocking-id>...",
		Short: "Require other tasks to be complete before a task",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // id plus at least one blocker
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			taskID, blockingIDs := args[0], args[1:]

			g := a.graph()
			for _, b := range blockingIDs {
				if g.WouldCreateCycle(taskID, b) {
					a.logger.Warn("blocking edge closes a cycle", "task_id", taskID, "blocking_id", b)
					a.print(a.formatter.FormatMessage(
						fmt.Sprintf("Warning: %s blocking %s creates a cycle", b, taskID)))
				}
				if _, ok := g.Get(b); !ok {
					a.print(a.formatter.FormatMessage(
						fmt.Sprintf("Warning: %s is not a registered task", b)))
				}
			}

			a.registry.AddBlockingTask(taskID, blockingIDs...)
			return a.printTask(taskID)
		},
	}
}

// unblockCmd implements 'taskgate unblock'.
func unblockCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <id> <blocking-id>",
		Short: "Remove a blocking task",
		Args:  cobra.ExactArgs(2), //nolint:mnd // CLI takes 2 positional args
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			a.registry.RemoveBlockingTask(args[0], args[1])
			return a.printTask(args[0])
		},
	}
}

// doneCmd implements 'taskgate done'.
func doneCmd(getApp appFn) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			id := args[0]

			if _, err := a.registry.Task(id); err != nil {
				return err
			}
			if !force {
				can, err := a.registry.CanCompleteTask(id)
				if err != nil {
					return err
				}
				if !can {
					return taskerrors.BlockedError{ID: id, BlockedBy: a.graph().BlockedBy(id)}
				}
			}

			if err := a.registry.SetTaskCompletion(id, true); err != nil {
				return err
			}
			return a.printTask(id)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Complete even if blockers are incomplete")
	return cmd
}

// undoCmd implements 'taskgate undo'.
func undoCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <id>",
		Short: "Mark a task incomplete",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			if err := a.registry.SetTaskCompletion(args[0], false); err != nil {
				return err
			}
			return a.printTask(args[0])
		},
	}
}

// showCmd implements 'taskgate show'.
func showCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return getApp().printTask(args[0])
		},
	}
}

// listCmd implements 'taskgate list'.
func listCmd(getApp appFn) *cobra.Command {
	var showComplete, showIncomplete bool
	var filterFlag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(_ *cobra.Command, _ []string) error {
			a := getApp()

			filter, err := registry.ParseFilter(filterFlag)
			if err != nil {
				return err
			}
			switch {
			case showComplete && showIncomplete:
				filter = registry.FilterAll
			case showComplete:
				filter = registry.FilterComplete
			case showIncomplete:
				filter = registry.FilterIncomplete
			}

			return a.printTaskList(a.registry.Tasks(filter))
		},
	}
	cmd.Flags().BoolVar(&showComplete, "complete", false, "Show only complete tasks")
	cmd.Flags().BoolVar(&showIncomplete, "incomplete", false, "Show only incomplete tasks")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "Filter by state (complete, incomplete)")
	return cmd
}

// canCmd implements 'taskgate can'.
func canCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "can <id>",
		Short: "Report whether a task may be completed now",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			can, err := a.registry.CanCompleteTask(args[0])
			if err != nil {
				return err
			}
			verdict := "blocked"
			if can {
				verdict = "eligible"
			}
			a.print(a.formatter.FormatMessage(fmt.Sprintf("%s: %s", args[0], verdict)))
			return nil
		},
	}
}

// blockersCmd implements 'taskgate blockers'.
func blockersCmd(getApp appFn) *cobra.Command {
	var resolve bool
	cmd := &cobra.Command{
		Use:   "blockers <id>",
		Short: "List the tasks blocking a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			if !resolve {
				ids := a.registry.BlockingTaskIDs(args[0])
				msg := "No blockers"
				if len(ids) > 0 {
					msg = strings.Join(ids, "\n")
				}
				a.print(a.formatter.FormatMessage(msg))
				return nil
			}
			tasks, err := a.registry.BlockingTasks(args[0])
			if err != nil {
				return err
			}
			return a.printTaskList(tasks)
		},
	}
	cmd.Flags().BoolVarP(&resolve, "resolve", "r", false, "Resolve ids into tasks (fails on unknown ids)")
	return cmd
}

// candidatesCmd implements 'taskgate candidates'.
func candidatesCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <id>",
		Short: "List tasks that could be added as blockers",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			a := getApp()
			return a.printTaskList(a.registry.EligibleDependentTasks(args[0]))
		},
	}
}

// readyCmd implements 'taskgate ready'.
func readyCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "List incomplete tasks whose blockers are all complete",
		RunE: func(_ *cobra.Command, _ []string) error {
			a := getApp()
			return a.printTaskList(a.graph().Ready())
		},
	}
}

// graphCmd implements 'taskgate graph'.
func graphCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Display the blocker tree",
		RunE: func(_ *cobra.Command, _ []string) error {
			a := getApp()
			a.print(a.formatter.FormatGraph(a.graph().BuildTree()))
			return nil
		},
	}
}

// checkCmd implements 'taskgate check'.
func checkCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report cycles and unknown blockers",
		RunE: func(_ *cobra.Command, _ []string) error {
			a := getApp()
			a.print(a.formatter.FormatReport(a.report()))
			return nil
		},
	}
}

// dumpCmd implements 'taskgate dump'.
func dumpCmd(getApp appFn) *cobra.Command {
	var asPlan bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the registry state for inspection",
		RunE: func(_ *cobra.Command, _ []string) error {
			a := getApp()
			snap := a.registry.Snapshot()
			if !asPlan {
				a.print(a.formatter.FormatSnapshot(snap))
				return nil
			}
			data, err := plan.FromSnapshot(snap).Marshal()
			if err != nil {
				return err
			}
			a.print(string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asPlan, "as-plan", false, "Print as a plan file usable with --plan")
	return cmd
}

// shellCmd implements 'taskgate shell'.
func shellCmd(getApp appFn) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively against one registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			sh := shell.New(cmd.InOrStdin(), a.out, a.execLine,
				shell.WithPrompt(a.cfg.Shell.Prompt),
				shell.WithErrorFormatter(a.formatter.FormatError),
				shell.WithLogger(a.logger.With("component", "shell")),
				shell.WithRefresh(func() {
					if a.cfg.Shell.Summary {
						_ = a.printTaskList(a.registry.Tasks(registry.FilterAll))
					}
				}),
			)
			id := a.bus.SubscribeAll(sh.Notify)
			defer a.bus.Unsubscribe(id)
			return sh.Run(cmd.Context())
		},
	}
}

// execLine runs one shell line through a fresh command tree, so flags never
// leak between lines.
func (a *app) execLine(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:           "taskgate",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.AddCommand(taskCommands(func() *app { return a })...)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
