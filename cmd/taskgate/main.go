package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskgate/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one process invocation and returns its exit code.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer) int {
	var a *app
	root := newRootCmd(&a, in, out)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if a != nil {
		defer a.close()
	}
	if err != nil {
		var f output.Formatter = output.NewHumanFormatter()
		if a != nil {
			f = a.formatter
		}
		fmt.Fprint(out, f.FormatError(err))
		return 1
	}
	return 0
}

// newRootCmd builds the process-level command. The app is constructed in
// PersistentPreRunE, once, and stored through ap.
func newRootCmd(ap **app, in io.Reader, out io.Writer) *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "taskgate",
		Short:         "Track tasks and the tasks that must finish before them",
		Long:          "taskgate - register tasks, declare blocking tasks, and ask whether a task may be completed.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			*ap = a
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVar(&opts.planPath, "plan", "", "Seed the registry from a YAML plan file")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/taskgate/config.yaml)")

	lazy := func() *app { return *ap }
	root.AddCommand(taskCommands(lazy)...)
	root.AddCommand(shellCmd(lazy))

	return root
}
