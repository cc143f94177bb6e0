package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// Config configures a REPL.
type Config struct {
	// Input is read one line at a time. Pass the same *bufio.Reader to
	// commands that prompt so no input is lost between them.
	Input  io.Reader
	Output io.Writer

	// Execute runs a command line. Required.
	Execute Executor
	// Prompt renders the prompt before each line. It is called every
	// time so it can reflect the current session.
	Prompt func() string
	// Commands are the top-level command names offered as suggestions.
	Commands []string
	// History records entered lines; nil keeps no history.
	History *History
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     *bufio.Reader
	output    io.Writer
	execute   Executor
	prompt    func() string
	completer *Completer
	history   *History
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	in := cfg.Input
	if in == nil {
		in = os.Stdin
	}
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}

	r := &REPL{
		input:     br,
		output:    cfg.Output,
		execute:   cfg.Execute,
		prompt:    cfg.Prompt,
		completer: NewCompleter(cfg.Commands),
		history:   cfg.History,
	}
	if r.output == nil {
		r.output = os.Stdout
	}
	if r.prompt == nil {
		r.prompt = func() string { return "hostdeck> " }
	}
	return r
}

type readResult struct {
	line string
	err  error
}

// Run reads lines until exit, EOF or ctx is cancelled.
//
// Input is read only while the prompt is shown, so a running command may
// read from the same reader.
func (r *REPL) Run(ctx context.Context) error {
	next := make(chan struct{})
	results := make(chan readResult)
	go func() {
		for {
			select {
			case <-next:
			case <-ctx.Done():
				return
			}
			line, err := r.input.ReadString('\n')
			select {
			case results <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.output, r.prompt())

		var res readResult
		select {
		case next <- struct{}{}:
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		}
		select {
		case res = <-results:
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		}

		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return res.err
		}
		last := res.err != nil

		if stop := r.handle(ctx, strings.TrimSpace(res.line)); stop {
			return nil
		}
		if last {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

// handle processes one line and reports whether the loop should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}

	args, err := Split(line)
	if err != nil {
		fmt.Fprintf(r.output, "error: %v\n", err)
		return false
	}

	if r.history != nil {
		r.history.Add(line)
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "history":
		r.printHistory()
		return false
	}

	if !r.completer.Known(args[0]) {
		r.printUnknown(args[0])
		return false
	}

	if err := r.execute(ctx, args); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(r.output, "error: %v\n", err)
	}
	return false
}

func (r *REPL) printUnknown(name string) {
	fmt.Fprintf(r.output, "unknown command %q", name)
	if s := r.completer.Suggest(name); len(s) > 0 {
		fmt.Fprintf(r.output, ", did you mean: %s", strings.Join(s, ", "))
	}
	fmt.Fprintln(r.output)
}

func (r *REPL) printHistory() {
	if r.history == nil {
		return
	}
	for i, line := range r.history.Entries() {
		fmt.Fprintf(r.output, "%4d  %s\n", i+1, line)
	}
}
