package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/jonwraymond/toolscript/binding"
	"github.com/jonwraymond/toolscript/runner"
)

const (
	replPrompt         = "toolscript> "
	replContinuePrompt = "... "
)

func (c *cli) replCmd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	var vars varFlags
	fs.Var(&vars, "var", "bind name=value for every input; repeatable")
	varsFile := fs.String("vars", "", "YAML or JSON file of bindings")
	timeout := fs.Duration("timeout", c.cfg.Timeout, "abort an input after this long; 0 means no limit")
	opsFlag := fs.String("ops", strings.Join(c.cfg.HostOps, ","), "comma-separated host op groups")
	basic := fs.Bool("basic", false, "read plain lines without history or line editing")
	history := fs.String("history", c.cfg.HistoryFile, "history file (default ~/.toolscript_history)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	bs, err := collectBindings(*varsFile, vars)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}
	b, err := c.builder(strings.Split(*opsFlag, ","), nil)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}

	s, err := newREPL(b, bs, *timeout, c.stdout, c.stderr)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer s.close()

	if *basic {
		s.runBasic(ctx, c.stdin)
		return exitOK
	}
	s.runReadline(ctx, c.stdin, historyPath(*history))
	return exitOK
}

func historyPath(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".toolscript_history")
}

// repl is an interactive session over one runner. Bindings set with .let
// are bound into every input.
type repl struct {
	builder  *runner.Builder
	runner   *runner.Runner
	bindings binding.Bindings
	timeout  time.Duration
	out      io.Writer
	errOut   io.Writer

	pending []string
}

func newREPL(b *runner.Builder, bs binding.Bindings, timeout time.Duration, out, errOut io.Writer) (*repl, error) {
	r, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &repl{
		builder:  b,
		runner:   r,
		bindings: bs,
		timeout:  timeout,
		out:      out,
		errOut:   errOut,
	}, nil
}

func (s *repl) close() {
	_ = s.runner.Close()
}

// prompt returns the prompt for the next line.
func (s *repl) prompt() string {
	if len(s.pending) > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

// feed handles one input line and reports whether the session should end.
// A line ending in a backslash continues on the next line.
func (s *repl) feed(ctx context.Context, line string) (quit bool) {
	if strings.HasSuffix(line, `\`) {
		s.pending = append(s.pending, strings.TrimSuffix(line, `\`))
		return false
	}
	if len(s.pending) > 0 {
		line = strings.Join(append(s.pending, line), "\n")
		s.pending = nil
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ".") {
		return s.command(trimmed)
	}
	s.eval(ctx, line)
	return false
}

func (s *repl) eval(ctx context.Context, body string) {
	runCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.runner.Execute(runCtx, runner.Request{Body: body, Bindings: s.bindings})
	for _, e := range res.Console {
		if e.Level == "log" || e.Level == "info" {
			fmt.Fprintln(s.out, e.Message)
		} else {
			fmt.Fprintf(s.out, "[%s] %s\n", e.Level, e.Message)
		}
	}
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		if !s.runner.Usable() {
			fmt.Fprintln(s.errOut, "Session state was lost; starting a new session.")
			s.reset()
		}
		return
	}
	fmt.Fprintln(s.out, res.Value)
}

func (s *repl) reset() {
	_ = s.runner.Close()
	r, err := s.builder.Build()
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	s.runner = r
}

func (s *repl) command(line string) (quit bool) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ".exit", ".quit":
		return true
	case ".help":
		fmt.Fprint(s.out, replHelp)
	case ".ops":
		if err := printOps(s.out, s.runner, arg); err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
	case ".describe":
		if err := printDoc(s.out, s.runner, arg); err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
	case ".let":
		b, err := parseVar(arg)
		if err == nil {
			err = binding.ValidateName(b.Name)
		}
		if err == nil {
			_, err = binding.Serialize(b.Value)
		}
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.setBinding(b)
	case ".unlet":
		s.removeBinding(arg)
	case ".vars":
		for _, b := range s.bindings {
			lit, _ := binding.Serialize(b.Value)
			fmt.Fprintf(s.out, "%s = %s\n", b.Name, lit)
		}
	case ".reset":
		s.reset()
		fmt.Fprintln(s.out, "Session reset.")
	default:
		fmt.Fprintf(s.errOut, "Unknown command %s; type .help\n", name)
	}
	return false
}

func (s *repl) setBinding(b binding.Binding) {
	for i := range s.bindings {
		if s.bindings[i].Name == b.Name {
			s.bindings[i] = b
			return
		}
	}
	s.bindings = append(s.bindings, b)
}

func (s *repl) removeBinding(name string) {
	out := s.bindings[:0]
	for _, b := range s.bindings {
		if b.Name != name {
			out = append(out, b)
		}
	}
	s.bindings = out
}

const replHelp = `Enter JavaScript to evaluate it. End a line with \ to continue it.
var declarations persist between inputs; let and const do not.

Commands:
  .let name=value   bind a value into every input
  .unlet name       remove a binding
  .vars             list bindings
  .ops [query]      list or search host ops
  .describe name    show an op's documentation
  .reset            start a fresh session
  .help             show this help
  .exit             leave
`

// runBasic reads plain lines from in.
func (s *repl) runBasic(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return
		}
		if s.feed(ctx, scanner.Text()) {
			return
		}
	}
}

// runReadline reads lines with history and editing, falling back to plain
// lines if the terminal cannot be set up.
func (s *repl) runReadline(ctx context.Context, in io.Reader, history string) {
	fmt.Fprintln(s.out, "toolscript REPL. Type .help for commands, .exit to leave.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       history,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         ".exit",
		HistorySearchFold: true,
		Stdin:             io.NopCloser(in),
		Stdout:            s.out,
		Stderr:            s.errOut,
	})
	if err != nil {
		fmt.Fprintf(s.errOut, "Failed to create readline instance, falling back to basic input: %v\n", err)
		s.runBasic(ctx, in)
		return
	}
	defer func() { _ = rl.Close() }()

	for ctx.Err() == nil {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 && len(s.pending) == 0 {
					fmt.Fprintln(s.out, "Use .exit to leave")
				}
				s.pending = nil
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintf(s.errOut, "Error reading input: %v\n", err)
			continue
		}
		if s.feed(ctx, line) {
			return
		}
	}
}
