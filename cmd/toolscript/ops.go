package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jonwraymond/toolscript/runner"
)

func (c *cli) opsCmd(args []string) int {
	fs := flag.NewFlagSet("ops", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	opsFlag := fs.String("ops", strings.Join(c.cfg.HostOps, ","), "comma-separated host op groups")
	describe := fs.String("describe", "", "show the documentation of one op")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	b, err := c.builder(strings.Split(*opsFlag, ","), nil)
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

	if *describe != "" {
		err = printDoc(c.stdout, r, *describe)
	} else {
		err = printOps(c.stdout, r, strings.Join(fs.Args(), " "))
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitUsage
	}
	return exitOK
}

// printOps lists every op of r, or the catalog hits for query.
func printOps(w io.Writer, r *runner.Runner, query string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	reg := r.Ops()
	if query == "" {
		for _, name := range reg.Names() {
			op, _ := reg.Get(name)
			fmt.Fprintf(tw, "%s\t%s\n", op.Signature(), op.Description)
		}
		return nil
	}

	hits, err := reg.Search(query, 0)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintf(tw, "no ops match %q\n", query)
		return nil
	}
	for _, h := range hits {
		op, _ := reg.Get(h.Name)
		fmt.Fprintf(tw, "%s\t%s\n", op.Signature(), h.Description)
	}
	return nil
}

// printDoc writes the documentation of one op.
func printDoc(w io.Writer, r *runner.Runner, name string) error {
	if name == "" {
		return errors.New("op name required")
	}
	doc, err := r.Ops().Describe(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, doc.Signature)
	if doc.Description != "" {
		fmt.Fprintf(w, "  %s\n", doc.Description)
	}
	if doc.Notes != "" {
		fmt.Fprintf(w, "\n  %s\n", doc.Notes)
	}
	return nil
}
