package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errNoInput is returned when a prompt reaches end of input.
var errNoInput = errors.New("no input")

// prompter asks the user for missing values.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal used for hidden input, or -1.
	fd int
}

func (rt *Runtime) prompter() *prompter {
	p := &prompter{in: rt.lines, out: rt.Err, fd: -1}
	if f, ok := rt.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// Line reads a visible value.
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// Secret reads a value without echo when attached to a terminal.
func (p *prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.fd < 0 {
		return p.readLine()
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// NewSecret reads a secret twice and requires both entries to match.
func (p *prompter) NewSecret(label string) (string, error) {
	first, err := p.Secret(label)
	if err != nil {
		return "", err
	}
	second, err := p.Secret("Confirm " + strings.ToLower(label))
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", err
	}
	return line, nil
}

// valueOrPrompt returns the flag value, prompting when it is empty.
func valueOrPrompt(value string, ask func(string) (string, error), label string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := ask(label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return v, nil
}
