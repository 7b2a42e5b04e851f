// Command toolscript runs JavaScript snippets with bound variables and host
// ops.
//
// Usage:
//
//	toolscript run [flags] [file]   run a script once (or on every change with -watch)
//	toolscript repl [flags]         interactive session with persistent state
//	toolscript serve [flags]        MCP server over stdio exposing run_script
//	toolscript ops [query]          list or search the available host ops
//	toolscript version              print the version
//
// Configuration is read from TOOLSCRIPT_* environment variables; see Config.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/hostops"
	"github.com/jonwraymond/toolscript/runner"
)

// Version is set at build time.
var Version = "dev"

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitExecution = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries what every subcommand needs.
type cli struct {
	cfg    Config
	logger *zap.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "toolscript %s\n", Version)
		return exitOK
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid log level %q: %v\n", cfg.LogLevel, err)
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	c := &cli{cfg: cfg, logger: logger, stdin: stdin, stdout: stdout, stderr: stderr}
	switch cmd {
	case "run":
		return c.runCmd(ctx, rest)
	case "repl":
		return c.replCmd(ctx, rest)
	case "serve":
		return c.serveCmd(ctx, rest)
	case "ops":
		return c.opsCmd(rest)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: toolscript <command> [flags]

Commands:
  run [file]     run a script from -e, a file or stdin
  repl           start an interactive session
  serve          serve the run_script MCP tool over stdio
  ops [query]    list or search host ops
  version        print the version

Run 'toolscript <command> -h' for command flags.
`)
}

// builder returns a runner builder with the selected host op groups.
func (c *cli) builder(groups []string, m *runner.Metrics) (*runner.Builder, error) {
	list, err := hostops.Select(groups...)
	if err != nil {
		return nil, err
	}
	opts := []runner.Option{
		runner.WithLogger(c.logger),
		runner.WithMaxCallStackSize(c.cfg.MaxCallStackSize),
		runner.WithMaxOpCalls(c.cfg.MaxOpCalls),
	}
	if m != nil {
		opts = append(opts, runner.WithMetrics(m))
	}
	return runner.NewBuilder(opts...).AddOps(list...), nil
}

// exitCode maps a run error onto the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	kind, ok := runner.KindOf(err)
	if !ok {
		return exitFailure
	}
	switch kind {
	case runner.KindInvalidVariableName, runner.KindSerialization, runner.KindDuplicateBinding:
		return exitUsage
	default:
		return exitExecution
	}
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
