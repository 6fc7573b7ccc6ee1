package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/yndnr/myke/internal/core/domain"
)

// DefaultPrompt is printed before each line.
const DefaultPrompt = "myke> "

// Executor runs one line's worth of task arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithCompleter sets the task name completer.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithPrompt replaces DefaultPrompt.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// New creates a REPL dispatching lines to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    DefaultPrompt,
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of
// input, and ctx.Err() when ctx is canceled, even while waiting at the
// prompt. Task errors are printed and the loop goes on.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "Warning: history not loaded: %v\n", err)
	}
	defer r.history.Save()

	lines := newLineReader(r.input)
	defer lines.close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.output, r.prompt)

		var res readResult
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return ctx.Err()
		case res = <-lines.next():
		}
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return res.err
		}
		eof := errors.Is(res.err, io.EOF)

		line := strings.TrimSpace(res.line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}
		r.history.Add(line)

		switch line {
		case "exit", "quit":
			return nil
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
		if eof {
			return nil
		}
	}
}

type readResult struct {
	line string
	err  error
}

// lineReader reads one line per request on its own goroutine, so a
// blocked read does not hold up cancellation. Input is only consumed
// when asked for, leaving stdin to the tasks in between.
type lineReader struct {
	requests chan struct{}
	results  chan readResult
	done     chan struct{}
}

func newLineReader(in io.Reader) *lineReader {
	lr := &lineReader{
		requests: make(chan struct{}),
		results:  make(chan readResult, 1),
		done:     make(chan struct{}),
	}
	go func() {
		reader := bufio.NewReader(in)
		for {
			select {
			case <-lr.done:
				return
			case <-lr.requests:
			}
			line, err := reader.ReadString('\n')
			lr.results <- readResult{line: line, err: err}
		}
	}()
	return lr
}

// next requests a line and returns the channel it arrives on.
func (lr *lineReader) next() <-chan readResult {
	lr.requests <- struct{}{}
	return lr.results
}

func (lr *lineReader) close() {
	close(lr.done)
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := Split(line)
	if err != nil {
		return err
	}
	if args[0] == "help" {
		args = append(args[1:], "--help")
	}

	err = r.exec(ctx, args)
	if errors.Is(err, domain.ErrTaskNotFound) {
		if s := r.completer.Suggest(args[0], 3); len(s) > 0 {
			return fmt.Errorf("%w\nDid you mean: %s?", err, strings.Join(s, ", "))
		}
	}
	return err
}

// Split splits a line into words the way a POSIX shell would, honoring
// single quotes, double quotes and backslash escapes. Variables are
// not expanded.
func Split(line string) ([]string, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithCause(err)
	}
	if len(words) == 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("empty line")
	}
	return words, nil
}
