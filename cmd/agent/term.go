package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	// Packages
	term "golang.org/x/term"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Term wraps stdin and an output writer for the interactive commands. The
// prompt is only printed when stdin is a terminal, so piped input stays
// clean.
type Term struct {
	r      *bufio.Reader
	w      io.Writer
	isTerm bool
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewTerm(w io.Writer) (*Term, error) {
	return &Term{
		r:      bufio.NewReader(os.Stdin),
		w:      w,
		isTerm: term.IsTerminal(int(os.Stdin.Fd())),
	}, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ReadLine prints the prompt and returns one line of input without the
// trailing newline. io.EOF is returned at end of input.
func (t *Term) ReadLine(prompt string) (string, error) {
	if t.isTerm {
		fmt.Fprint(t.w, prompt)
	}
	line, err := t.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Println writes a line to the output writer.
func (t *Term) Println(args ...any) {
	fmt.Fprintln(t.w, args...)
}
