// Package shell runs an interactive line loop that dispatches each line as a
// command against a long-lived registry.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/abatilo/taskgate/internal/event"
	"github.com/abatilo/taskgate/internal/logging"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// Option configures a Shell.
type Option func(*Shell)

// WithPrompt sets the prompt printed before each line.
func WithPrompt(prompt string) Option {
	return func(s *Shell) { s.prompt = prompt }
}

// WithErrorFormatter sets how command errors are rendered.
func WithErrorFormatter(fn func(error) string) Option {
	return func(s *Shell) { s.formatError = fn }
}

// WithRefresh sets a function run after any line that mutated the registry.
func WithRefresh(fn func()) Option {
	return func(s *Shell) { s.refresh = fn }
}

// WithLogger sets the shell's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// Shell reads command lines and hands them to an Executor.
type Shell struct {
	in          io.Reader
	out         io.Writer
	exec        Executor
	prompt      string
	formatError func(error) string
	refresh     func()
	logger      *logging.Logger
	parser      *shellwords.Parser
	dirty       bool
}

// New creates a Shell.
func New(in io.Reader, out io.Writer, exec Executor, opts ...Option) *Shell {
	s := &Shell{
		in:     in,
		out:    out,
		exec:   exec,
		prompt: "> ",
		formatError: func(err error) string {
			return "Error: " + err.Error() + "\n"
		},
		logger: logging.NopLogger(),
		parser: shellwords.NewParser(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify records that the registry changed. It is meant to be subscribed to
// the registry's event bus; it only marks state, so it never re-enters the
// registry. The refresh runs once the current line has finished.
func (s *Shell) Notify(e event.Event) {
	s.dirty = true
	s.logger.Debug("registry mutated", "event_type", e.EventType(), "task_id", e.TaskID())
}

// Run reads lines until EOF, an exit command, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, s.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		args, err := s.parser.Parse(scanner.Text())
		if err != nil {
			fmt.Fprint(s.out, s.formatError(fmt.Errorf("parse line: %w", err)))
			continue
		}
		if len(args) == 0 || strings.HasPrefix(args[0], "#") {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		s.dirty = false
		if err := s.exec(ctx, args); err != nil {
			s.logger.Info("command failed", "command", args[0], "error", err.Error())
			fmt.Fprint(s.out, s.formatError(err))
		}
		if s.dirty && s.refresh != nil {
			s.refresh()
		}
	}
}
