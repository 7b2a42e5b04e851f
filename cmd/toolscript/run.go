package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonwraymond/toolscript/binding"
	"github.com/jonwraymond/toolscript/engine"
	"github.com/jonwraymond/toolscript/runner"
)

type runOptions struct {
	expr     string
	file     string
	varsFile string
	vars     varFlags
	json     bool
	watch    bool
	timeout  time.Duration
	ops      string
}

func (c *cli) runCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	var opts runOptions
	fs.StringVar(&opts.expr, "e", "", "script text to run")
	fs.StringVar(&opts.file, "f", "", "script file to run ('-' for stdin)")
	fs.Var(&opts.vars, "var", "bind name=value; repeatable")
	fs.StringVar(&opts.varsFile, "vars", "", "YAML or JSON file of bindings")
	fs.BoolVar(&opts.json, "json", false, "print the full result as JSON")
	fs.BoolVar(&opts.watch, "watch", false, "re-run the script file whenever it changes")
	fs.DurationVar(&opts.timeout, "timeout", c.cfg.Timeout, "abort a run after this long; 0 means no limit")
	fs.StringVar(&opts.ops, "ops", strings.Join(c.cfg.HostOps, ","), "comma-separated host op groups")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.file == "" && fs.NArg() > 0 {
		opts.file = fs.Arg(0)
	}
	if opts.expr != "" && opts.file != "" {
		fmt.Fprintln(c.stderr, "Error: -e and a script file are mutually exclusive")
		return exitUsage
	}
	if opts.watch && (opts.file == "" || opts.file == "-") {
		fmt.Fprintln(c.stderr, "Error: -watch needs a script file")
		return exitUsage
	}

	bs, err := collectBindings(opts.varsFile, opts.vars)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}
	b, err := c.builder(strings.Split(opts.ops, ","), nil)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.watch {
		return c.watchAndRun(ctx, b, opts, bs)
	}

	body, err := c.readBody(opts)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}
	r, err := b.Build()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer func() { _ = r.Close() }()

	return c.execute(ctx, r, body, bs, opts)
}

// readBody returns the script from -e, the script file, or stdin.
func (c *cli) readBody(opts runOptions) (string, error) {
	switch {
	case opts.expr != "":
		return opts.expr, nil
	case opts.file != "" && opts.file != "-":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

// execute runs body once and prints the result.
func (c *cli) execute(ctx context.Context, r *runner.Runner, body string, bs binding.Bindings, opts runOptions) int {
	runCtx, cancel := withTimeout(ctx, opts.timeout)
	defer cancel()

	res, err := r.Execute(runCtx, runner.Request{Body: body, Bindings: bs})
	if !opts.json {
		c.printConsole(res.Console)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	if opts.json {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return exitFailure
		}
		return exitOK
	}
	fmt.Fprintln(c.stdout, res.Value)
	return exitOK
}

// printConsole writes script console output to stderr. log and info lines
// are written as is; other levels are prefixed.
func (c *cli) printConsole(entries []engine.LogEntry) {
	for _, e := range entries {
		switch e.Level {
		case "log", "info":
			fmt.Fprintln(c.stderr, e.Message)
		default:
			fmt.Fprintf(c.stderr, "[%s] %s\n", e.Level, e.Message)
		}
	}
}

// watchAndRun runs the script file now and again after every change, each
// time in a fresh runner, until ctx ends.
func (c *cli) watchAndRun(ctx context.Context, b *runner.Builder, opts runOptions, bs binding.Bindings) int {
	runOnce := func() {
		body, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return
		}
		r, err := b.Build()
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return
		}
		defer func() { _ = r.Close() }()
		c.execute(ctx, r, string(body), bs, opts)
	}

	runOnce()
	c.logger.Info("watching for changes", zap.String("file", opts.file))
	if err := watchFile(ctx, opts.file, watchDebounce, c.logger, runOnce); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}
